package qa

// Every failure path resolves to one of these fixed user-visible strings; the
// service never surfaces an error to the transport.
const (
	GreetingMessage = "Hi! Ask me about our project portfolio and I will answer with sources."

	FallbackUnavailable  = "The service is temporarily unavailable, please try again later."
	FallbackNotFound     = "Nothing in the portfolio matched your question."
	FallbackNoData       = "I have no case data to answer from right now, please try again later."
	FallbackModelTimeout = "The model did not respond in time, please ask again."
	FallbackModelError   = "Something went wrong while preparing the answer, please try again."
)
