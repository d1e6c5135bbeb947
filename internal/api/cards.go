package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/alsaprobe/internal/api/models"
	"github.com/smazurov/alsaprobe/internal/probe"
)

// registerCardRoutes registers the probe endpoint.
func (s *Server) registerCardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "probe-cards",
		Method:      http.MethodGet,
		Path:        "/api/cards",
		Summary:     "Probe Cards",
		Description: "Run one probe pass: enumerate every sound card, read its names and exercise the " +
			"read-only mixer open, attach, register, load and close sequence. Concurrent requests are serialized.",
		Tags:     []string{"cards"},
		Security: withAuth(),
		Errors:   []int{401, 503},
	}, func(ctx context.Context, _ *struct{}) (*models.CardsResponse, error) {
		if s.prober == nil {
			return nil, huma.Error503ServiceUnavailable("No audio backend configured")
		}

		start := time.Now()
		results, err := s.prober.Run(ctx)
		if err != nil {
			if probe.IsFatal(err) {
				return nil, huma.Error503ServiceUnavailable("Card enumeration failed", err)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, huma.NewError(http.StatusRequestTimeout, "Probe interrupted", err)
			}
			return nil, huma.Error500InternalServerError("Probe failed", err)
		}

		data := models.CardsData{
			Cards:      make([]models.Card, len(results)),
			Count:      len(results),
			DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		}
		for i, result := range results {
			data.Cards[i] = toAPICard(result)
			if !result.OK() {
				data.Failed++
			}
		}
		return &models.CardsResponse{Body: data}, nil
	})
}

// toAPICard converts a probe result to its API form.
func toAPICard(result probe.ProbeResult) models.Card {
	card := models.Card{
		Card:          int(result.Handle),
		Address:       result.Address,
		ShortName:     result.ShortName,
		LongName:      result.LongName,
		Steps:         make([]models.Step, len(result.Steps)),
		MixerReleased: result.MixerReleased,
		Elements:      result.Elements,
		OK:            result.OK(),
	}
	for i, step := range result.Steps {
		card.Steps[i] = models.Step{
			Step:      string(step.Step),
			Code:      step.Code,
			Error:     step.Error,
			ElapsedMS: float64(step.Elapsed.Microseconds()) / 1000,
		}
	}
	return card
}
