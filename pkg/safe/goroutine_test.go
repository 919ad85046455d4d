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

package safe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	err := Do(func() {
		panic("test panic")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test panic")

	assert.NoError(t, Do(func() {}))
}

func TestDo_WrapsErrorPanic(t *testing.T) {
	sentinel := errors.New("boom")
	err := Do(func() {
		panic(sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestGo(t *testing.T) {
	done := make(chan bool)
	Go(func() {
		defer func() {
			done <- true
		}()
		panic("test panic in goroutine")
	})
	<-done
}

func TestCall(t *testing.T) {
	v, err := Call(func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	v, err = Call(func() (string, error) {
		panic("label lookup exploded")
	})
	require.Error(t, err)
	assert.Empty(t, v)

	_, err = Call(func() (int, error) {
		return 0, errors.New("plain failure")
	})
	assert.EqualError(t, err, "plain failure")
}
