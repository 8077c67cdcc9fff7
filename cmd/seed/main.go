package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bawasa/bawasa-backend/pkg/env"
	"github.com/bawasa/bawasa-backend/pkg/logger"
	"github.com/bawasa/bawasa-backend/pkg/types"
)

// Demo data poster. Logs in as the admin account and drives the public API
// the same way the portal does, so seeded rows pass every validation the
// real flow enforces.

type seedConsumer struct {
	AccountNumber string   `json:"accountNumber"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	Address       string   `json:"address"`
	Barangay      string   `json:"barangay,omitempty"`
	MeterSerial   string   `json:"meterSerial,omitempty"`
	readings      []float64
}

var demoConsumers = []seedConsumer{
	{
		AccountNumber: "BAW-0001",
		FirstName:     "Maria",
		LastName:      "Santos",
		Address:       "Purok 2, Poblacion",
		Barangay:      "Poblacion",
		MeterSerial:   "MTR-114021",
		readings:      []float64{12, 27, 41},
	},
	{
		AccountNumber: "BAW-0002",
		FirstName:     "Jose",
		LastName:      "Dela Cruz",
		Address:       "Sitio Ilaya",
		Barangay:      "San Roque",
		MeterSerial:   "MTR-114022",
		readings:      []float64{8, 19},
	},
	{
		AccountNumber: "BAW-0003",
		FirstName:     "Ana",
		LastName:      "Reyes",
		Address:       "National Highway",
		Barangay:      "Bagong Silang",
		MeterSerial:   "MTR-114023",
		readings:      []float64{30},
	},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	_ = godotenv.Load()

	baseURL := flag.String("base-url", env.Get("SEED_BASE_URL", "http://localhost:8080"), "api base url")
	email := flag.String("email", env.Get("SEED_ADMIN_EMAIL", "admin@bawasa.local"), "admin email")
	password := flag.String("password", env.Get("SEED_ADMIN_PASSWORD", ""), "admin password")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "missing admin password: set -password or SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	client := &seedClient{
		base: *baseURL,
		http: &http.Client{Timeout: 15 * time.Second},
	}

	token, err := client.login(ctx, *email, *password)
	if err != nil {
		logg.Error(ctx, "seed login failed", err)
		os.Exit(1)
	}
	client.token = token

	for _, consumer := range demoConsumers {
		consumerID, err := client.createConsumer(ctx, consumer)
		if err != nil {
			logg.Error(ctx, "seed consumer failed", err)
			os.Exit(1)
		}
		ctx := logg.WithFields(ctx, map[string]any{
			"accountNumber": consumer.AccountNumber,
			"consumerId":    consumerID,
		})
		logg.Info(ctx, "seeded consumer")

		for _, present := range consumer.readings {
			if err := client.submitReading(ctx, consumerID, present); err != nil {
				logg.Error(ctx, "seed reading failed", err)
				os.Exit(1)
			}
		}
		logg.Info(ctx, "seeded readings")
	}

	logg.Info(ctx, "seed complete")
}

type seedClient struct {
	base  string
	token string
	http  *http.Client
}

func (c *seedClient) login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var result struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	if err := c.post(ctx, "/api/v1/auth/login", body, &result); err != nil {
		return "", err
	}
	if result.Tokens.AccessToken == "" {
		return "", fmt.Errorf("login response missing access token")
	}
	return result.Tokens.AccessToken, nil
}

func (c *seedClient) createConsumer(ctx context.Context, consumer seedConsumer) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/api/admin/v1/consumers", consumer, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("create consumer response missing id")
	}
	return result.ID, nil
}

func (c *seedClient) submitReading(ctx context.Context, consumerID string, present float64) error {
	body := map[string]any{
		"consumerId":     consumerID,
		"presentReading": present,
		"remarks":        "seeded reading",
	}
	return c.post(ctx, "/api/v1/readings", body, nil)
}

// post sends a JSON body and decodes the success envelope's data into out.
// Non-2xx responses surface the envelope's error code and message.
func (c *seedClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope types.ErrorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
		}
		return fmt.Errorf("post %s: %s (%s)", path, envelope.Error.Message, envelope.Error.Code)
	}

	if out == nil {
		return nil
	}

	raw := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return json.Unmarshal(raw.Data, out)
}
