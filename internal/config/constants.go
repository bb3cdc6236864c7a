package config

import "time"

const (
	// Generation parameters sent with every sketch. GUIDANCE_SCALE overrides
	// the guidance within (0, MaxGuidanceScale].
	DefaultGuidanceScale = "7.5"
	MaxGuidanceScale     = "20"
	InferenceSteps       = 30

	// Advisory only; the backend enforces the real limit.
	AdvisoryUploadLimit = "PNG, JPG up to 2MB"

	// Multipart filename for the sketch field.
	SketchFilename = "sketch.png"

	// Assistant
	AssistantGreeting = "Upload a sketch to start designing with AI"
	AssistantContext  = "You are an AI assistant helping with UI/UX design. Provide helpful suggestions for improving designs, creating better user experiences, and implementing modern design patterns."

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// History entries per page
	HistoryPerPage = 5

	// Backend health answers are reused this long by the bot
	HealthCacheTTL = 15 * time.Second

	// Ops log delivery timeout
	OpsLogTimeout = 10 * time.Second
)
