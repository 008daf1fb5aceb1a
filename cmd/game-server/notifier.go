package main

import (
	"github.com/rs/zerolog/log"

	"miner-tycoon/internal/game"
)

// logNotifier routes engine notifications to the structured log. A UI
// front end would subscribe here instead.
type logNotifier struct{}

func (logNotifier) Emit(message string, severity game.Severity) {
	switch severity {
	case game.SeverityError:
		log.Warn().Str("severity", string(severity)).Msg(message)
	default:
		log.Info().Str("severity", string(severity)).Msg(message)
	}
}
