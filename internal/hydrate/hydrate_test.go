package hydrate

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type limits struct {
	Max  int      `yaml:"max"`
	Tags []string `yaml:"tags"`
}

type settings struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	Limits  limits `yaml:"limits"`
}

func TestDecoderCases(t *testing.T) {
	splitTags := func(_ Context, payload map[string]any) (map[string]any, error) {
		section, ok := payload["limits"].(map[string]any)
		if !ok {
			return payload, nil
		}
		if raw, ok := section["tags"].(string); ok {
			parts := strings.Split(raw, ",")
			tags := make([]any, 0, len(parts))
			for _, part := range parts {
				tags = append(tags, strings.TrimSpace(part))
			}
			section["tags"] = tags
		}
		return payload, nil
	}
	ensureTag := func(_ Context, s *settings) error {
		if len(s.Limits.Tags) == 0 {
			s.Limits.Tags = []string{"default"}
		}
		return nil
	}

	cases := []struct {
		name    string
		doc     string
		opts    []DecoderOption[settings]
		want    settings
		wantErr string
	}{
		{
			name: "plain",
			doc:  "name: alpha\nenabled: true\nlimits:\n  max: 3\n  tags: [a, b]\n",
			want: settings{Name: "alpha", Enabled: true, Limits: limits{Max: 3, Tags: []string{"a", "b"}}},
		},
		{
			name: "pre hook normalises",
			doc:  "limits:\n  tags: \"x, y\"\n",
			opts: []DecoderOption[settings]{WithPreHook[settings](splitTags)},
			want: settings{Limits: limits{Tags: []string{"x", "y"}}},
		},
		{
			name: "post hook fills",
			doc:  "name: beta\n",
			opts: []DecoderOption[settings]{WithPostHook[settings](ensureTag)},
			want: settings{Name: "beta", Limits: limits{Tags: []string{"default"}}},
		},
		{
			name: "defaults survive partial documents",
			doc:  "limits:\n  max: 9\n",
			opts: []DecoderOption[settings]{WithDefaults(settings{Name: "base", Enabled: true, Limits: limits{Max: 1}})},
			want: settings{Name: "base", Enabled: true, Limits: limits{Max: 9}},
		},
		{
			name:    "known fields",
			doc:     "name: gamma\nextra: 1\n",
			opts:    []DecoderOption[settings]{WithKnownFields[settings]()},
			wantErr: "field extra not found",
		},
		{
			name:    "malformed",
			doc:     "name: [unterminated\n",
			wantErr: "hydrate: parse",
		},
		{
			name: "empty document",
			doc:  "",
			want: settings{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewDecoder(tc.opts...).DecodeBytes(Context{Source: "test.yaml"}, []byte(tc.doc))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoderHookErrorsNameTheDocument(t *testing.T) {
	boom := errors.New("boom")
	decoder := NewDecoder(
		WithPostHook[settings](func(Context, *settings) error { return boom }),
	)
	_, err := decoder.Decode(Context{Source: "runtime.yaml", Section: "warnings"}, map[string]any{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped hook error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"runtime.yaml#warnings"`) {
		t.Fatalf("expected document label in error, got %v", err)
	}
}

func TestDecoderDoesNotMutateInput(t *testing.T) {
	payload := map[string]any{"name": "delta"}
	decoder := NewDecoder(
		WithPreHook[settings](func(_ Context, p map[string]any) (map[string]any, error) {
			p["name"] = "changed"
			return p, nil
		}),
	)
	got, err := decoder.Decode(Context{Source: "inline"}, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "changed" || payload["name"] != "delta" {
		t.Fatalf("unexpected mutation: result %q payload %v", got.Name, payload["name"])
	}
}

func TestDecoderRejectsNilPayload(t *testing.T) {
	if _, err := NewDecoder[settings]().Decode(Context{Source: "nil"}, nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}
