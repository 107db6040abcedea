package kms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/kms"
)

func TestParseEvents(t *testing.T) {
	var buf []byte
	buf = kms.AppendEvent(buf, kms.Event{Type: kms.EventVBlank, UserData: 1, Sequence: 9})
	// unknown event kind with a 12 byte body
	buf = append(buf, 0x99, 0, 0, 0, 12, 0, 0, 0, 1, 2, 3, 4)
	buf = kms.AppendEvent(buf, kms.Event{Type: kms.EventFlipComplete, UserData: 42, Sec: 3, Usec: 4, CrtcID: 30})

	events, err := kms.ParseEvents(buf)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint32(kms.EventVBlank), events[0].Type)
	assert.Equal(t, uint32(9), events[0].Sequence)
	assert.Equal(t, kms.Event{Type: kms.EventFlipComplete, UserData: 42, Sec: 3, Usec: 4, CrtcID: 30}, events[1])
}

func TestParseEventsTruncated(t *testing.T) {
	buf := kms.AppendEvent(nil, kms.Event{Type: kms.EventFlipComplete})
	_, err := kms.ParseEvents(buf[:20])
	assert.Error(t, err)
	_, err = kms.ParseEvents(buf[:4])
	assert.Error(t, err)
}
