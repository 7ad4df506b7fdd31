package out

import (
	"context"
	"errors"
	"testing"

	apperrors "dinod/internal/platform/errors"
)

func TestOsascriptProviderSamplesBrowserTab(t *testing.T) {
	t.Parallel()

	p := &OsascriptProvider{run: func(_ context.Context, script string) (string, error) {
		if script == frontmostScript {
			return "Google Chrome\n", nil
		}
		return "https://github.com/torvalds/linux\nlinux repo\n", nil
	}}

	sig, err := p.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if sig.AppName != "Google Chrome" || sig.URL != "https://github.com/torvalds/linux" || sig.Title != "linux repo" {
		t.Fatalf("signal = %+v", sig)
	}
}

func TestOsascriptProviderFallsBackToAppOnly(t *testing.T) {
	t.Parallel()

	p := &OsascriptProvider{run: func(_ context.Context, script string) (string, error) {
		if script == frontmostScript {
			return "Safari", nil
		}
		return "", errors.New("automation denied")
	}}

	sig, err := p.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if sig.AppName != "Safari" || sig.URL != "" {
		t.Fatalf("signal = %+v", sig)
	}
}

func TestOsascriptProviderUnavailable(t *testing.T) {
	t.Parallel()

	p := &OsascriptProvider{run: func(context.Context, string) (string, error) {
		return "", errors.New("no display")
	}}
	if _, err := p.Sample(context.Background()); !errors.Is(err, apperrors.ErrActivityUnavailable) {
		t.Fatalf("err = %v, want ErrActivityUnavailable", err)
	}
}
