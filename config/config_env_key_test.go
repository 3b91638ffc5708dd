package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"processing": map[string]any{
			"mergeOverlapDistance": 1,
		},
		"store": map[string]any{
			"mongo": map[string]any{
				"sensorCollection": "sensors",
			},
		},
		"routing": map[string]any{
			"maxSnapDistanceM": 50,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "PROCESSING_MERGEOVERLAPDISTANCE", want: "processing.mergeOverlapDistance"},
		{envKey: "STORE_MONGO_SENSORCOLLECTION", want: "store.mongo.sensorCollection"},
		{envKey: "ROUTING_MAXSNAPDISTANCEM", want: "routing.maxSnapDistanceM"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
