// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracerProvider_Disabled(t *testing.T) {
	tp, cleanup, err := InitTracerProvider(context.Background(), Conf{})
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, tp)

	ctx, span := Start(context.Background(), "op")
	defer span.End()
	assert.NotEmpty(t, TraceID(ctx))
}

func TestInitTracerProvider_BadProtocol(t *testing.T) {
	_, _, err := InitTracerProvider(context.Background(), Conf{Enabled: true, Protocol: "udp"})
	assert.Error(t, err)
}

func TestConf_SetDefaults(t *testing.T) {
	c := Conf{Protocol: ProtocolGRPC}
	c.SetDefaults()
	assert.Equal(t, "localhost:4317", c.Endpoint)
	assert.Equal(t, "navmanager", c.ServiceName)

	h := Conf{}
	h.SetDefaults()
	assert.Equal(t, ProtocolHTTP, h.Protocol)
	assert.Equal(t, "localhost:4318", h.Endpoint)
	assert.NoError(t, h.Validate())
}

func TestEnd_RecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := Start(context.Background(), "failing")
	End(span, errors.New("boom"))

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "failing", ended[0].Name())
	assert.Equal(t, "boom", ended[0].Status().Description)
}

func TestTraceID_Empty(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}
