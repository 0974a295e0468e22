package config

import "testing"

func TestExportEnvRoundTrip(t *testing.T) {
	source, _ := New(WithEnv(envMap{
		"MODEL_PROVIDER":        "azure_openai",
		"AZURE_OPENAI_ENDPOINT": "https://example.openai.azure.com/",
	}.Lookup))

	exported := ExportEnv(source)
	if _, ok := exported["AZURE_OPENAI_MODEL_NAME"]; ok {
		t.Fatalf("expected empty model name to be omitted: %v", exported)
	}

	child, _ := New(WithEnv(MapEnvLookup(exported)))
	if child.ModelProvider != source.ModelProvider || child.AzureEndpoint != source.AzureEndpoint || child.AzureAPIVersion != source.AzureAPIVersion {
		t.Fatalf("round trip mismatch: %+v vs %+v", child, source)
	}
}
