package models

// Step is the outcome of one subsystem call made while probing a card.
type Step struct {
	Step      string  `json:"step" enum:"card_name,card_longname,mixer_open,mixer_attach,selem_register,mixer_load" doc:"Subsystem call"`
	Code      int     `json:"code" example:"0" doc:"Status code: 0 on success, negative on failure"`
	Error     string  `json:"error,omitempty" example:"No such device" doc:"Failure description"`
	ElapsedMS float64 `json:"elapsed_ms" example:"0.42" doc:"Time spent in the call in milliseconds"`
}

// Card is the probe result for one sound card.
type Card struct {
	Card          int      `json:"card" example:"0" doc:"Subsystem-assigned card index"`
	Address       string   `json:"address" example:"hw:0" doc:"Control address used to attach the mixer"`
	ShortName     string   `json:"short_name,omitempty" example:"PCH" doc:"Short card name, absent if the lookup failed"`
	LongName      string   `json:"long_name,omitempty" example:"HDA Intel PCH at 0xf7f10000 irq 32" doc:"Long card name, absent if the lookup failed"`
	Steps         []Step   `json:"steps" doc:"Every attempted step in order"`
	MixerReleased bool     `json:"mixer_released" doc:"Whether a mixer was opened and then released"`
	Elements      []string `json:"elements,omitempty" example:"[\"Master\",\"Capture\"]" doc:"Simple mixer elements found after load"`
	OK            bool     `json:"ok" doc:"Whether every step succeeded"`
}

// CardsData represents the response data for a probe run
type CardsData struct {
	Cards      []Card  `json:"cards" doc:"Probe results in enumeration order"`
	Count      int     `json:"count" example:"2" doc:"Number of cards probed"`
	Failed     int     `json:"failed" example:"0" doc:"Cards with at least one failed step"`
	DurationMS float64 `json:"duration_ms" example:"12.5" doc:"Run duration in milliseconds"`
}

// CardsResponse represents the HTTP response for a probe run
type CardsResponse struct {
	Body CardsData
}
