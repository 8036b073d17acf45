package constants

type MessageType string

const (
	MessageText         MessageType = "TEXT"
	MessageImage        MessageType = "IMAGE"
	MessageFile         MessageType = "FILE"
	MessageLocation     MessageType = "LOCATION"
	MessageSystem       MessageType = "SYSTEM"
	MessageStatusUpdate MessageType = "STATUS_UPDATE"
)

// MaxMessageContentLength caps chat message content.
const MaxMessageContentLength = 1000
