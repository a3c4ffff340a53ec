package models

import "testing"

func TestTableNames(t *testing.T) {
	cases := map[string]interface{ TableName() string }{
		"leads":                           Lead{},
		"service_requests":                ServiceRequest{},
		"alternative_provider_selections": AlternativeProviderSelection{},
		"proposals":                       Proposal{},
		"provider_profiles":               ProviderProfile{},
		"provider_subscriptions":          ProviderSubscription{},
	}
	for want, m := range cases {
		if got := m.TableName(); got != want {
			t.Fatalf("unexpected table name: want %s got %s", want, got)
		}
	}
}
