package domain

import "github.com/google/uuid"

type SessionID string

type RequestID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}
