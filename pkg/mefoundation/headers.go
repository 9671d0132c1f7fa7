package mefoundation

import "net/http"

// Header sets mirror the official clients. The service rejects calls that
// do not look like them, so values are kept verbatim.

const (
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36 OPR/114.0.0.0 (Edition Yx GX)"
	mobileUserAgent  = "Magic%20Eden/194 CFNetwork/1496.0.7 Darwin/23.5.0"
	acceptLanguage   = "en-US;q=0.5,en;q=0.3"
	sentryTrace      = "4c8344fb2c0942bca3995cd102a4223c-ab959a225a809cc8-1"
)

func sessionHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", browserUserAgent)
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", acceptLanguage)
	h.Set("Referer", "https://mefoundation.com/login")
	h.Set("Content-Type", "application/json")
	h.Set("X-Trpc-Source", "nextjs-react")
	h.Set("Sentry-Trace", sentryTrace)
	h.Set("Baggage", "sentry-environment=production,sentry-release=OXJ8HjdYzWapTs_F5Efi8,sentry-public_key=1a5e7baa354df159cf3efd1eeca5baea,sentry-trace_id=4c8344fb2c0942bca3995cd102a4223c,sentry-sample_rate=1,sentry-sampled=true")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Priority", "u=4")
	h.Set("Te", "trailers")
	return h
}

func verifyHeaders() http.Header {
	h := http.Header{}
	h.Set("X-Exodus-App-Id", "magic-eden")
	h.Set("Accept", "*/*")
	h.Set("X-Requested-With", "magic-eden 2.30.0 mobile")
	h.Set("X-Exodus-Platform", "ios")
	h.Set("Accept-Language", acceptLanguage)
	h.Set("User-Agent", mobileUserAgent)
	h.Set("X-Exodus-Version", "2.30.0")
	h.Set("Content-Type", "application/json")
	return h
}

func linkHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", acceptLanguage)
	h.Set("Baggage", "sentry-environment=production,sentry-release=jY6mki4_Tqyy2LJT5ljgm,sentry-public_key=9db2fb508ab642eedd5d51bf3618740b,sentry-trace_id=fdac1520ca6c46a7afcc8f20fb119f2d,sentry-replay_id=c753b4fe121042339939e5a16010d415,sentry-sample_rate=0.05,sentry-sampled=true")
	h.Set("Content-Type", "application/json")
	h.Set("Sec-Ch-Ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"macOS"`)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sentry-Trace", sentryTrace)
	h.Set("X-Trpc-Source", "nextjs-react")
	h.Set("Referer", "https://mefoundation.com/wallets?eligible=false")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	return h
}

func walletsHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Baggage", "sentry-environment=production,sentry-release=rUjks-Y9GR01z74atxAEP,sentry-public_key=43f5a6f01fe6dff7b5c0d7c54530d6a0,sentry-trace_id=ef57f76f823948928981c4fe54fdb863,sentry-sample_rate=0.05,sentry-sampled=false")
	h.Set("Priority", "u=1, i")
	h.Set("Next-Router-State-Tree", "%5B%22%22%2C%7B%22children%22%3A%5B%22(dashboard)%22%2C%7B%22children%22%3A%5B%22(link)%22%2C%7B%22children%22%3A%5B%22wallets%22%2C%7B%22children%22%3A%5B%22__PAGE__%22%2C%7B%7D%2C%22%2Fwallets%22%2C%22refresh%22%5D%7D%5D%7D%5D%7D%5D%7D%2Cnull%2C%22refetch%22%5D")
	h.Set("Referer", "https://mefoundation.com/wallets")
	h.Set("Rsc", "1")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("User-Agent", browserUserAgent)
	return h
}
