package mefoundation

// Request bodies and response shapes of the remote API. The tRPC endpoints
// wrap everything in {"0":{"json":...}} batches.

const (
	chainSolana     = "sol"
	allocationEvent = "tge-airdrop-final"
)

type sessionInput struct {
	Batch sessionBatch `json:"0"`
}

type sessionBatch struct {
	JSON sessionUUID `json:"json"`
}

type sessionUUID struct {
	UUID string `json:"uuid"`
}

func newSessionInput(nonce string) sessionInput {
	return sessionInput{Batch: sessionBatch{JSON: sessionUUID{UUID: nonce}}}
}

// appMetadata identifies the mobile app build that verifies sessions
type appMetadata struct {
	Platform     string `json:"platform"`
	PatchVersion int    `json:"patchVersion"`
	MinorVersion int    `json:"minorVersion"`
	MajorVersion int    `json:"majorVersion"`
}

type verifyRequest struct {
	Wallet    string      `json:"wallet"`
	Signature string      `json:"signature"`
	Message   string      `json:"message"`
	Metadata  appMetadata `json:"metadata"`
}

func newVerifyRequest(wallet, signature, message string) verifyRequest {
	return verifyRequest{
		Wallet:    wallet,
		Signature: signature,
		Message:   message,
		Metadata: appMetadata{
			Platform:     "ios",
			PatchVersion: 0,
			MinorVersion: 30,
			MajorVersion: 2,
		},
	}
}

// VerifyResult is the answer to a session verification
type VerifyResult struct {
	Success bool `json:"success"`
}

type linkRequest struct {
	Batch linkBatch `json:"0"`
}

type linkBatch struct {
	JSON linkPayload `json:"json"`
}

type linkPayload struct {
	Message         string `json:"message"`
	Wallet          string `json:"wallet"`
	Chain           string `json:"chain"`
	Signature       string `json:"signature"`
	AllocationEvent string `json:"allocationEvent"`
	IsLedger        bool   `json:"isLedger"`
}

func newLinkRequest(message, wallet, signature string) linkRequest {
	return linkRequest{Batch: linkBatch{JSON: linkPayload{
		Message:         message,
		Wallet:          wallet,
		Chain:           chainSolana,
		Signature:       signature,
		AllocationEvent: allocationEvent,
		IsLedger:        false,
	}}}
}

// LinkResponse is the tRPC batch answer of a wallet link. Every level is optional.
type LinkResponse []*LinkResponseItem

type LinkResponseItem struct {
	Result *LinkResult `json:"result"`
}

type LinkResult struct {
	Data *LinkData `json:"data"`
}

type LinkData struct {
	JSON *LinkJSON `json:"json"`
}

type LinkJSON struct {
	Eligibility *EligibilityStatus `json:"eligibility"`
}

type EligibilityStatus struct {
	Eligibility *string `json:"eligibility"`
}
