// Package api is the HTTP client used by the interactive query console.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chessindex/internal/client/display"
	"chessindex/internal/server/core"
	"chessindex/internal/server/storage"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(path string, query url.Values, result interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	resp, err := c.HTTPClient.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			fmt.Printf("%sError: %s (%s)%s\n", display.Red, errResp.Error, errResp.Code, display.Reset)
			if errResp.Details != "" {
				fmt.Printf("%sDetails: %s%s\n", display.Red, errResp.Details, display.Reset)
			}
		} else {
			fmt.Printf("%s%s%s\n", display.Red, string(respBody), display.Reset)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}

	return nil
}

// API Methods

func (c *Client) GetGame(gameID string) (*storage.GameDetail, error) {
	var resp storage.GameDetail
	err := c.get("/api/v1/games/"+gameID, nil, &resp)
	return &resp, err
}

func (c *Client) SearchGames(fen string, filters url.Values) ([]storage.GameSearchResult, error) {
	query := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("position", fen)

	var resp []storage.GameSearchResult
	err := c.get("/api/v1/games", query, &resp)
	return resp, err
}

func (c *Client) TopMoves(fen string, limit string) ([]storage.MoveStats, error) {
	query := url.Values{}
	query.Set("position", fen)
	if limit != "" {
		query.Set("limit", limit)
	}

	var resp []storage.MoveStats
	err := c.get("/api/v1/positions/moves", query, &resp)
	return resp, err
}

func (c *Client) OutcomesByRatingBand(fen string) ([]storage.RatingBandStats, error) {
	query := url.Values{}
	query.Set("position", fen)

	var resp []storage.RatingBandStats
	err := c.get("/api/v1/positions/outcomes", query, &resp)
	return resp, err
}
