package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

type roomResponse struct {
	ID string `json:"id"`
}

// CreateRoom asks the relay's REST API at baseURL for a new join token.
func CreateRoom(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/rooms", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to create room: unexpected status %d", resp.StatusCode)
	}

	var room roomResponse
	if err = json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return "", fmt.Errorf("failed to decode room: %w", err)
	}

	if room.ID == "" {
		return "", fmt.Errorf("failed to create room: empty id")
	}

	return room.ID, nil
}
