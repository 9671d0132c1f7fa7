package airdrop

// Subscriber handles event subscriptions.
type Subscriber struct {
	done                chan struct{}
	runStartedHandler   func(RunStarted)
	batchHandler        func(BatchDispatched)
	taskFailedHandler   func(TaskFailed)
	taskPanickedHandler func(TaskPanicked)
	eligibleHandler     func(WalletEligible)
	notEligibleHandler  func(WalletNotEligible)
	skippedHandler      func(WalletSkipped)
	linkedHandler       func(WalletLinked)
	linkRetryingHandler func(LinkRetrying)
	linkGaveUpHandler   func(LinkGaveUp)
	runDoneHandler      func(RunDone)
}

// OnRunStarted sets the handler for RunStarted events
func OnRunStarted(fn func(RunStarted)) func(*Subscriber) {
	return func(s *Subscriber) { s.runStartedHandler = fn }
}

// OnBatchDispatched sets the handler for BatchDispatched events
func OnBatchDispatched(fn func(BatchDispatched)) func(*Subscriber) {
	return func(s *Subscriber) { s.batchHandler = fn }
}

// OnTaskFailed sets the handler for TaskFailed events
func OnTaskFailed(fn func(TaskFailed)) func(*Subscriber) {
	return func(s *Subscriber) { s.taskFailedHandler = fn }
}

// OnTaskPanicked sets the handler for TaskPanicked events
func OnTaskPanicked(fn func(TaskPanicked)) func(*Subscriber) {
	return func(s *Subscriber) { s.taskPanickedHandler = fn }
}

// OnWalletEligible sets the handler for WalletEligible events
func OnWalletEligible(fn func(WalletEligible)) func(*Subscriber) {
	return func(s *Subscriber) { s.eligibleHandler = fn }
}

// OnWalletNotEligible sets the handler for WalletNotEligible events
func OnWalletNotEligible(fn func(WalletNotEligible)) func(*Subscriber) {
	return func(s *Subscriber) { s.notEligibleHandler = fn }
}

// OnWalletSkipped sets the handler for WalletSkipped events
func OnWalletSkipped(fn func(WalletSkipped)) func(*Subscriber) {
	return func(s *Subscriber) { s.skippedHandler = fn }
}

// OnWalletLinked sets the handler for WalletLinked events
func OnWalletLinked(fn func(WalletLinked)) func(*Subscriber) {
	return func(s *Subscriber) { s.linkedHandler = fn }
}

// OnLinkRetrying sets the handler for LinkRetrying events
func OnLinkRetrying(fn func(LinkRetrying)) func(*Subscriber) {
	return func(s *Subscriber) { s.linkRetryingHandler = fn }
}

// OnLinkGaveUp sets the handler for LinkGaveUp events
func OnLinkGaveUp(fn func(LinkGaveUp)) func(*Subscriber) {
	return func(s *Subscriber) { s.linkGaveUpHandler = fn }
}

// OnRunDone sets the handler for RunDone events
func OnRunDone(fn func(RunDone)) func(*Subscriber) {
	return func(s *Subscriber) { s.runDoneHandler = fn }
}

// NewSubscriber creates a Subscriber with the given options and starts the dispatch loop.
// Returns a closer function that waits for all events to be processed.
//
// Example:
//
//	closer := airdrop.NewSubscriber(events,
//	  airdrop.OnRunDone(func(e airdrop.RunDone) { ... }),
//	)
//	defer closer()  // Ensures all events processed before exit
//
// The subscriber processes events until the events channel closes,
// then the closer function confirms all processing is complete.
func NewSubscriber(events <-chan Event, opts ...func(*Subscriber)) func() {
	s := &Subscriber{
		done:                make(chan struct{}),
		runStartedHandler:   func(RunStarted) {},        // nop by default
		batchHandler:        func(BatchDispatched) {},   // nop by default
		taskFailedHandler:   func(TaskFailed) {},        // nop by default
		taskPanickedHandler: func(TaskPanicked) {},      // nop by default
		eligibleHandler:     func(WalletEligible) {},    // nop by default
		notEligibleHandler:  func(WalletNotEligible) {}, // nop by default
		skippedHandler:      func(WalletSkipped) {},     // nop by default
		linkedHandler:       func(WalletLinked) {},      // nop by default
		linkRetryingHandler: func(LinkRetrying) {},      // nop by default
		linkGaveUpHandler:   func(LinkGaveUp) {},        // nop by default
		runDoneHandler:      func(RunDone) {},           // nop by default
	}

	for _, opt := range opts {
		opt(s)
	}

	go func() {
		defer close(s.done)
		for ev := range events {
			switch e := ev.(type) {
			case RunStarted:
				s.runStartedHandler(e)
			case BatchDispatched:
				s.batchHandler(e)
			case TaskFailed:
				s.taskFailedHandler(e)
			case TaskPanicked:
				s.taskPanickedHandler(e)
			case WalletEligible:
				s.eligibleHandler(e)
			case WalletNotEligible:
				s.notEligibleHandler(e)
			case WalletSkipped:
				s.skippedHandler(e)
			case WalletLinked:
				s.linkedHandler(e)
			case LinkRetrying:
				s.linkRetryingHandler(e)
			case LinkGaveUp:
				s.linkGaveUpHandler(e)
			case RunDone:
				s.runDoneHandler(e)
			}
		}
	}()

	return func() {
		<-s.done
	}
}
