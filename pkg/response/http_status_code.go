package response

// Application error codes carried in error bodies alongside the HTTP status,
// so clients can branch on the exact guard that failed.
const (
	CodeInvalidInput          = 4000
	CodeSelfReference         = 4001
	CodeAlreadyExists         = 4002
	CodeAlreadyAccepted       = 4003
	CodeAlreadyRejected       = 4004
	CodeInvalidParticipants   = 4010
	CodeIntroducerNotEligible = 4011
	CodeAlreadyConnected      = 4012
	CodeDuplicateRequest      = 4013
	CodeNotRespondable        = 4014
	CodeNotCancellable        = 4015
	CodeNotYetIntroduced      = 4016
	CodeForbidden             = 4030
	CodeNotFound              = 4040
	CodeUnavailable           = 5030
)

// message
var msg = map[int]string{
	CodeInvalidInput:          "invalid input",
	CodeSelfReference:         "cannot target yourself",
	CodeAlreadyExists:         "connection already exists",
	CodeAlreadyAccepted:       "request already accepted",
	CodeAlreadyRejected:       "request already rejected",
	CodeInvalidParticipants:   "participants must be distinct",
	CodeIntroducerNotEligible: "introducer not eligible",
	CodeAlreadyConnected:      "users already connected",
	CodeDuplicateRequest:      "active request already exists",
	CodeNotRespondable:        "request not respondable",
	CodeNotCancellable:        "request not cancellable",
	CodeNotYetIntroduced:      "introduction not completed",
	CodeForbidden:             "forbidden",
	CodeNotFound:              "not found",
	CodeUnavailable:           "temporarily unavailable, retry with backoff",
}

// Message returns the canonical message for a code.
func Message(code int) string {
	return msg[code]
}
