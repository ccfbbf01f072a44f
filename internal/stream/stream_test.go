// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesLatest(t *testing.T) {
	b := New[int]()
	b.Publish(1)
	b.Publish(2)

	sub := b.Subscribe()
	defer sub.Cancel()

	assert.Equal(t, 2, <-sub.C)
}

func TestSlowSubscriberSeesNewestValue(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	defer sub.Cancel()

	for i := 1; i <= 10; i++ {
		b.Publish(i)
	}

	assert.Equal(t, 10, <-sub.C)
	select {
	case v := <-sub.C:
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := New[string]()
	sub := b.Subscribe()
	sub.Cancel()
	sub.Cancel()

	_, ok := <-sub.C
	assert.False(t, ok)

	assert.NotPanics(t, func() { b.Publish("after cancel") })
}

func TestCloseEndsAllSubscriptions(t *testing.T) {
	b := New[int]()
	s1 := b.Subscribe()
	s2 := b.Subscribe()

	b.Close()
	b.Publish(5)

	_, ok1 := <-s1.C
	_, ok2 := <-s2.C
	assert.False(t, ok1)
	assert.False(t, ok2)

	late := b.Subscribe()
	_, ok := <-late.C
	assert.False(t, ok)
	s1.Cancel()
}

func TestLast(t *testing.T) {
	b := New[int]()
	_, ok := b.Last()
	require.False(t, ok)

	b.Publish(7)
	v, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, 7, v)
}
