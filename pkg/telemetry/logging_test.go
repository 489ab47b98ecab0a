// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogLevelTakesEffectAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "info", "text")
	t.Cleanup(func() { SetLogLevel("info") })

	logger.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug record must be suppressed at info level, got: %s", buf.String())
	}

	SetLogLevel("debug")
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug record must pass after raising verbosity, got: %s", buf.String())
	}

	SetLogLevel("error")
	buf.Reset()
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info record must be suppressed at error level, got: %s", buf.String())
	}
}
