//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/pet-adoption-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type petPayload struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Status  string `json:"status"`
}

type applicationPayload struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"userId"`
	PetID   int64  `json:"petId"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status"`
}

type decisionPayload struct {
	applicationPayload
	PetStatus string `json:"petStatus"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func TestAdoptionPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	applicantAuth := pacttest.BearerToken(t, pacttest.ApplicantUserID, pacttest.ApplicantEmail, "user")
	adminAuth := pacttest.BearerToken(t, pacttest.AdminUserID, pacttest.AdminEmail, "admin")
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemBody := func(title string, status int) matchers.Map {
		return matchers.Map{
			"type":   matchers.Like("/problems/conflict"),
			"title":  matchers.S(title),
			"status": matchers.Like(status),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StatePetAvailable).
		UponReceiving("a request to fetch an adoptable pet").
		WithRequest("GET", fmt.Sprintf("/api/pets/%d", pacttest.ExistingPetID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":      matchers.Like(pacttest.ExistingPetID),
				"name":    matchers.Like(pacttest.ExamplePetName),
				"species": matchers.Like(pacttest.ExamplePetSpecies),
				"status":  matchers.Term("available", "available|pending|adopted"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StatePetMissing).
		UponReceiving("a request for a missing pet").
		WithRequest("GET", fmt.Sprintf("/api/pets/%d", pacttest.MissingPetID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody("Resource Not Found", http.StatusNotFound))
		})

	pact.AddInteraction().
		Given(pacttest.StatePetAvailable).
		UponReceiving("an application to adopt an available pet").
		WithRequest("POST", fmt.Sprintf("/api/pets/%d/adopt", pacttest.ExistingPetID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S(applicantAuth))
			b.JSONBody(matchers.Map{"message": matchers.Like(pacttest.ExampleApplicationMessage)})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":     matchers.Like(pacttest.PendingApplicationID),
				"userId": matchers.Like(pacttest.ApplicantUserID),
				"petId":  matchers.Like(pacttest.ExistingPetID),
				"status": matchers.S("pending"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StatePetAdopted).
		UponReceiving("an application to adopt a pet that is already adopted").
		WithRequest("POST", fmt.Sprintf("/api/pets/%d/adopt", pacttest.ExistingPetID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S(applicantAuth))
			b.JSONBody(matchers.Map{"message": matchers.Like(pacttest.ExampleApplicationMessage)})
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody("Conflict", http.StatusConflict))
		})

	pact.AddInteraction().
		Given(pacttest.StatePendingApplication).
		UponReceiving("an administrator approving a pending application").
		WithRequest("PUT", fmt.Sprintf("/api/adoptions/%d", pacttest.PendingApplicationID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S(adminAuth))
			b.JSONBody(matchers.Map{"status": matchers.S("approved")})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":        matchers.Like(pacttest.PendingApplicationID),
				"petId":     matchers.Like(pacttest.ExistingPetID),
				"status":    matchers.S("approved"),
				"petStatus": matchers.S("adopted"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newAdoptionClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		pet, err := client.GetPet(ctx, pacttest.ExistingPetID)
		if err != nil {
			return fmt.Errorf("get pet: %w", err)
		}
		if pet.Status != "available" {
			return fmt.Errorf("expected available pet, got %+v", pet)
		}

		var apiErr apiError
		if _, err := client.GetPet(ctx, pacttest.MissingPetID); !errors.As(err, &apiErr) || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for pet %d, got %v", pacttest.MissingPetID, err)
		}

		created, err := client.Apply(ctx, applicantAuth, pacttest.ExistingPetID, pacttest.ExampleApplicationMessage)
		if err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		if created.Status != "pending" || created.PetID != pacttest.ExistingPetID {
			return fmt.Errorf("unexpected application %+v", created)
		}

		if _, err := client.Apply(ctx, applicantAuth, pacttest.ExistingPetID, pacttest.ExampleApplicationMessage); !errors.As(err, &apiErr) || apiErr.status != http.StatusConflict {
			return fmt.Errorf("expected 409 for adopted pet, got %v", err)
		}

		decision, err := client.Decide(ctx, adminAuth, pacttest.PendingApplicationID, "approved")
		if err != nil {
			return fmt.Errorf("decide: %w", err)
		}
		if decision.PetStatus != "adopted" {
			return fmt.Errorf("expected adopted pet after approval, got %+v", decision)
		}
		return nil
	})
	require.NoError(t, err)
}

type adoptionClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAdoptionClient(config pactconsumer.MockServerConfig) *adoptionClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &adoptionClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *adoptionClient) GetPet(ctx context.Context, id int64) (*petPayload, error) {
	var pet petPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pets/%d", id), "", nil, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

func (c *adoptionClient) Apply(ctx context.Context, authorization string, petID int64, message string) (*applicationPayload, error) {
	var created applicationPayload
	body := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/pets/%d/adopt", petID), authorization, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *adoptionClient) Decide(ctx context.Context, authorization string, applicationID int64, status string) (*decisionPayload, error) {
	var decision decisionPayload
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/adoptions/%d", applicationID), authorization, body, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

func (c *adoptionClient) do(ctx context.Context, method, path, authorization string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{status: status, title: problem.Title, detail: problem.Detail}
}
