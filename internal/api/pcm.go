package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/alsaprobe/internal/api/models"
)

// registerPCMRoutes registers the PCM device listing endpoint.
func (s *Server) registerPCMRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-pcm-devices",
		Method:      http.MethodGet,
		Path:        "/api/pcm",
		Summary:     "List PCM Devices",
		Description: "List all playback and capture PCM devices with their capabilities including supported " +
			"sample rates, formats, and channel configurations",
		Tags:     []string{"cards"},
		Security: withAuth(),
		Errors:   []int{401, 500},
	}, func(_ context.Context, _ *struct{}) (*models.PCMDevicesResponse, error) {
		devices, err := s.listPCM()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to enumerate PCM devices", err)
		}

		apiDevices := make([]models.PCMDevice, len(devices))
		for i, device := range devices {
			apiDevices[i] = models.PCMDevice{
				CardNumber:       device.CardNumber,
				CardID:           device.CardID,
				CardName:         device.CardName,
				DeviceNumber:     device.DeviceNumber,
				DeviceName:       device.DeviceName,
				Type:             device.Type,
				ALSADevice:       device.ALSADevice,
				SupportedRates:   device.SupportedRates,
				MinChannels:      device.MinChannels,
				MaxChannels:      device.MaxChannels,
				SupportedFormats: device.SupportedFormats,
				MinBufferSize:    device.MinBufferSize,
				MaxBufferSize:    device.MaxBufferSize,
				MinPeriodSize:    device.MinPeriodSize,
				MaxPeriodSize:    device.MaxPeriodSize,
			}
		}

		return &models.PCMDevicesResponse{
			Body: models.PCMDevicesData{
				Devices: apiDevices,
				Count:   len(apiDevices),
			},
		}, nil
	})
}
