package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	wantByInput := map[string]string{
		"asc":                   "ASC",
		"ASC":                   "ASC",
		"desc":                  "DESC",
		"DESC":                  "DESC",
		"DeSc":                  "DESC",
		"  desc  ":              "DESC",
		"":                      "ASC",
		"sideways":              "ASC",
		"ASC; DROP TABLE users": "ASC",
	}

	for input, want := range wantByInput {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	allowed := map[string]bool{"id": true, "name": true, "created_at": true}

	t.Run("whitelisted field passes through trimmed", func(t *testing.T) {
		assert.Equal(t, "name", ValidateSortField("name", allowed, "created_at"))
		assert.Equal(t, "id", ValidateSortField(" id ", allowed, "created_at"))
	})

	t.Run("empty and unknown fields fall back to the default", func(t *testing.T) {
		assert.Equal(t, "created_at", ValidateSortField("", allowed, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("password_hash", allowed, "created_at"))
		assert.Empty(t, ValidateSortField("invalid", allowed, ""))
	})

	t.Run("injection payloads never pass", func(t *testing.T) {
		payloads := []string{
			"id; DROP TABLE users;--",
			"id' OR '1'='1",
			"id\"; DROP TABLE users;--",
			"id UNION SELECT * FROM users",
			"id ORDER BY 1",
			"id, (SELECT password FROM users)",
			"CASE WHEN 1=1 THEN id ELSE name END",
			"id/**/;DROP TABLE users",
			"id\n; DROP TABLE users",
			"id\t; DROP TABLE users",
			"' OR ''='",
			"1; EXEC xp_cmdshell('dir')",
		}
		for _, payload := range payloads {
			assert.Equal(t, "created_at", ValidateSortField(payload, UserSortFields, "created_at"),
				"payload %q must fall back to the default", payload)
		}
	})
}

func TestSortFieldWhitelists(t *testing.T) {
	cases := []struct {
		name      string
		whitelist map[string]bool
		fields    []string
		excluded  []string
	}{
		{
			name:      "users",
			whitelist: UserSortFields,
			fields:    []string{"email", "first_name", "last_name"},
			excluded:  []string{"password_hash", "business_id_suffix"},
		},
		{
			name:      "customers",
			whitelist: CustomerSortFields,
			fields:    []string{"name", "phone", "email"},
			excluded:  []string{"user_id"},
		},
		{
			name:      "transactions",
			whitelist: TransactionSortFields,
			fields:    []string{"payable", "paid", "remaining", "payment_status"},
			excluded:  []string{"customer_id"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, f := range append(tc.fields, "id", "created_at", "updated_at") {
				assert.True(t, tc.whitelist[f], "%s should allow sorting by %s", tc.name, f)
			}
			for _, f := range tc.excluded {
				assert.False(t, tc.whitelist[f], "%s should not allow sorting by %s", tc.name, f)
			}
		})
	}
}
