package recipients

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestStoreGet_DefaultsWhenFileMissing(t *testing.T) {
	defaults := Recipients{DoctorEmail: "doc@clinic.test", SecretaryEmail: "desk@clinic.test"}
	s := NewStore(afero.NewMemMapFs(), "/data/emails.json", defaults)

	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != defaults {
		t.Fatalf("Get = %+v, want %+v", got, defaults)
	}
}

func TestStoreUpdate_PersistsAndReplacesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "/data/emails.json", Recipients{DoctorEmail: "old@clinic.test"})
	ctx := context.Background()

	want := Recipients{DoctorEmail: "doc@clinic.test", SecretaryEmail: "desk@clinic.test"}
	if err := s.Update(ctx, Recipients{DoctorEmail: " doc@clinic.test ", SecretaryEmail: "desk@clinic.test"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}

	doctor, _ := s.Doctor(ctx)
	secretary, _ := s.Secretary(ctx)
	if doctor != want.DoctorEmail || secretary != want.SecretaryEmail {
		t.Fatalf("Doctor/Secretary = %q/%q", doctor, secretary)
	}

	if ok, _ := afero.Exists(fs, "/data/emails.json.tmp"); ok {
		t.Fatalf("temp file left behind")
	}
	raw, _ := afero.ReadFile(fs, "/data/emails.json")
	if !strings.Contains(string(raw), `"doctorEmail": "doc@clinic.test"`) {
		t.Fatalf("file = %s", raw)
	}

	// A second store on the same filesystem sees the update.
	if got, _ := NewStore(fs, "/data/emails.json", Recipients{}).Get(ctx); got != want {
		t.Fatalf("reopened Get = %+v, want %+v", got, want)
	}
}

func TestStoreUpdate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   Recipients
		msg  string
	}{
		{"missing doctor", Recipients{SecretaryEmail: "desk@clinic.test"}, "required"},
		{"missing secretary", Recipients{DoctorEmail: "doc@clinic.test"}, "required"},
		{"bad format", Recipients{DoctorEmail: "doc", SecretaryEmail: "desk@clinic.test"}, "invalid email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			err := NewStore(fs, "emails.json", Recipients{}).Update(context.Background(), tt.in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if !strings.Contains(vErr.Error(), tt.msg) {
				t.Fatalf("err = %q, want it to mention %q", vErr.Error(), tt.msg)
			}
			if ok, _ := afero.Exists(fs, "emails.json"); ok {
				t.Fatalf("file written despite validation failure")
			}
		})
	}
}

func TestStoreGet_CorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "emails.json", []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := NewStore(fs, "emails.json", Recipients{}).Get(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
