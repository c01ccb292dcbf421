package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"launchpd/internal/api"
	"launchpd/internal/failfast"
)

const maxListedViolations = 10

// violationDetails lists up to maxListedViolations paths and a count of the
// rest.
func violationDetails(violations []string) []string {
	if len(violations) <= maxListedViolations {
		return append([]string(nil), violations...)
	}
	details := append([]string(nil), violations[:maxListedViolations]...)
	return append(details, fmt.Sprintf("...and %d more", len(violations)-maxListedViolations))
}

// uploadFailure maps a late-stage error onto a user-facing failure.
func uploadFailure(stage string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	kind, ok := api.KindOf(err)
	if ok {
		switch kind {
		case api.KindMaintenance:
			return failfast.New("The deployment service is under maintenance", err,
				"Try again in a few minutes")
		case api.KindNetwork:
			return failfast.New("Could not connect to the deployment service", err,
				"Check your internet connection",
				"Re-run the deploy; it always uploads to a fresh version")
		case api.KindAuth, api.KindTwoFactor:
			return failfast.New("Authentication failed", err,
				"Run 'launchpd login' to sign in again",
				"Check LAUNCHPD_API_KEY if you set it")
		case api.KindRateLimit:
			return failfast.New("Too many requests", err,
				"Wait a minute and re-run the deploy")
		case api.KindQuota:
			return failfast.New("Quota exceeded", err,
				"Run 'launchpd quota' to see your usage")
		}
	}

	return failfast.New(fmt.Sprintf("%s failed: %v", stage, err), err, suggestionsFor(err.Error())...)
}

// suggestionsFor guesses remedies from an error message that may come from
// any layer.
func suggestionsFor(msg string) []string {
	msg = strings.ToLower(msg)
	var out []string
	add := func(s string) {
		if len(out) < 3 {
			out = append(out, s)
		}
	}

	if strings.Contains(msg, "too large") || strings.Contains(msg, "413") || strings.Contains(msg, "payload") {
		add("A file exceeds the upload size limit; remove or compress large files")
	}
	if strings.Contains(msg, "rate") || strings.Contains(msg, "429") || strings.Contains(msg, "too many") {
		add("You are being rate limited; wait a moment and retry")
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") {
		add("The connection timed out; retry or raise LAUNCHPD_TIMEOUT")
	}
	if strings.Contains(msg, "forbidden") || strings.Contains(msg, "403") || strings.Contains(msg, "permission") {
		add("Check that your account owns this subdomain")
	}
	add("Re-run with --verbose for details")
	return out
}
