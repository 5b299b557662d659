package app

import "errors"

var (
	ErrMissingCredential = errors.New("please enter your API key")
	ErrMissingTopic      = errors.New("please enter a topic")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
)
