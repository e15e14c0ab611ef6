// ABOUTME: Demo weather tool returning fixed conditions for a location
// ABOUTME: Exercises the response/data split: text for the model, payload for the client

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/litigantportal/agentkit/internal/agent"
)

// NewWeatherTool returns the demo weather tool. The response text goes
// to the model; the data payload rides the event stream to the client.
func NewWeatherTool() *agent.Tool {
	return &agent.Tool{
		Name:        "get_weather",
		Description: "Get the current weather for a location.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"required": ["location"],
			"properties": {
				"location": {"type": "string", "description": "City name or location to get weather for"}
			}
		}`),
		Execute: func(ctx context.Context, a *agent.Agent, args map[string]any) (*agent.ToolOutput, error) {
			location, err := requireStringParam(args, "location")
			if err != nil {
				return nil, err
			}

			tempF := 72
			condition := "sunny"
			return &agent.ToolOutput{
				Response: fmt.Sprintf("Location: %s, Temp: %d F, Condition: %s.", location, tempF, condition),
				Data: map[string]any{
					"location":  location,
					"temp_f":    tempF,
					"condition": condition,
				},
			}, nil
		},
	}
}
