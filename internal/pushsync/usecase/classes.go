package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"qbo-backend/pkg/quickbooks"
)

// classResolver finds or creates a Class per category name, caching ids for one run.
type classResolver struct {
	api   EntityAPI
	cache map[string]string
}

func newClassResolver(api EntityAPI) *classResolver {
	return &classResolver{api: api, cache: make(map[string]string)}
}

func (r *classResolver) ensure(ctx context.Context, name string) (string, error) {
	if id, ok := r.cache[name]; ok {
		return id, nil
	}

	resp, err := r.api.Query(ctx, "SELECT * FROM Class WHERE Name = "+quickbooks.QuoteLiteral(name))
	if err != nil {
		return "", fmt.Errorf("query class %q: %w", name, err)
	}
	var existing []struct {
		ID string `json:"Id"`
	}
	if raw, ok := resp["Class"]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &existing); err != nil {
			return "", fmt.Errorf("decode class query: %w", err)
		}
	}
	if len(existing) > 0 && existing[0].ID != "" {
		r.cache[name] = existing[0].ID
		return existing[0].ID, nil
	}

	created, err := r.api.Create(ctx, "class", "Class", map[string]interface{}{
		"Name":   name,
		"Active": true,
	})
	if err != nil {
		return "", fmt.Errorf("create class %q: %w", name, err)
	}
	id := fmt.Sprint(created["Id"])
	if created["Id"] == nil || id == "" {
		return "", fmt.Errorf("create class %q: response has no Id", name)
	}
	r.cache[name] = id
	return id, nil
}
