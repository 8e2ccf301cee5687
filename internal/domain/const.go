package domain

type ctxKey string

const (
	RequesterSubjectCtxKey ctxKey = "sm-requesterSubject"
	RequesterUserIDCtxKey  ctxKey = "sm-requesterUserID"
)

const (
	SignalChannel = "supermarkets"
)
