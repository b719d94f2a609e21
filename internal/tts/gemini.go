package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Synthesizer turns a narration script into raw 16-bit 24kHz mono PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

// GeminiSynthesizer speaks through the Gemini speech models.
type GeminiSynthesizer struct {
	apiKey string
	model  string
	voice  string
	client *http.Client
}

func NewGeminiSynthesizer(apiKey, model, voice string) *GeminiSynthesizer {
	if voice == "" {
		voice = "Kore"
	}
	return &GeminiSynthesizer{
		apiKey: apiKey,
		model:  model,
		voice:  voice,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type speechRequest struct {
	Contents         []speechContent `json:"contents"`
	GenerationConfig speechGenCfg    `json:"generationConfig"`
}

type speechContent struct {
	Parts []speechPart `json:"parts"`
}

type speechPart struct {
	Text string `json:"text"`
}

type speechGenCfg struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoice `json:"prebuiltVoiceConfig"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type speechResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					Data string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (s *GeminiSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := speechRequest{
		Contents: []speechContent{{Parts: []speechPart{{Text: text}}}},
		GenerationConfig: speechGenCfg{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoice{VoiceName: s.voice},
				},
			},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(geminiEndpoint, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini speech returned %d: %s", resp.StatusCode, string(body))
	}

	var speech speechResponse
	if err := json.NewDecoder(resp.Body).Decode(&speech); err != nil {
		return nil, fmt.Errorf("failed to decode speech response: %w", err)
	}

	for _, cand := range speech.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode speech audio: %w", err)
			}
			return pcm, nil
		}
	}
	return nil, nil
}
