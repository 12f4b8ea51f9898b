package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand_Move(t *testing.T) {
	cmd, err := DecodeCommand("s1", MsgMove, json.RawMessage(`{"x":1.5,"ry":3.0,"isMoving":true}`))
	require.NoError(t, err)

	mv, ok := cmd.(Move)
	require.True(t, ok)
	assert.Equal(t, "s1", mv.Sender())
	require.NotNil(t, mv.X)
	assert.Equal(t, 1.5, *mv.X)
	assert.Nil(t, mv.Y)
	assert.Nil(t, mv.Z)
	require.NotNil(t, mv.RY)
	assert.Equal(t, 3.0, *mv.RY)
	require.NotNil(t, mv.IsMoving)
	assert.True(t, *mv.IsMoving)
}

func TestDecodeCommand_MoveEmptyPayload(t *testing.T) {
	cmd, err := DecodeCommand("s1", MsgMove, nil)
	require.NoError(t, err)

	mv := cmd.(Move)
	assert.Nil(t, mv.X)
	assert.Nil(t, mv.Y)
	assert.Nil(t, mv.IsMoving)
}

func TestDecodeCommand_MoveMalformedPayload(t *testing.T) {
	cmd, err := DecodeCommand("s1", MsgMove, json.RawMessage(`not json at all`))
	require.NoError(t, err, "malformed payloads are dropped per-field, never rejected")

	mv := cmd.(Move)
	assert.Nil(t, mv.X)
}

func TestDecodeCommand_Chat(t *testing.T) {
	cmd, err := DecodeCommand("s1", MsgChat, json.RawMessage(`{"text":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", cmd.(Chat).Text)
}

func TestDecodeCommand_Emote(t *testing.T) {
	cmd, err := DecodeCommand("s1", MsgEmote, json.RawMessage(`{"emote":"wave"}`))
	require.NoError(t, err)
	assert.Equal(t, "wave", cmd.(Emote).Emote)
}

func TestDecodeCommand_VoiceSignal(t *testing.T) {
	raw := json.RawMessage(`{"type":"offer","peerId":"s2","data":{"sdp":"v=0"}}`)
	cmd, err := DecodeCommand("s1", MsgVoiceSignal, raw)
	require.NoError(t, err)

	sig := cmd.(VoiceSignal)
	assert.Equal(t, "offer", sig.Type)
	assert.Equal(t, "s2", sig.PeerID)
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(sig.Data))
}

func TestDecodeCommand_ScreenSignal(t *testing.T) {
	cmd, err := DecodeCommand("s1", MsgScreenSignal, json.RawMessage(`{"type":"answer","peerId":"s3"}`))
	require.NoError(t, err)

	sig := cmd.(ScreenSignal)
	assert.Equal(t, "answer", sig.Type)
	assert.Equal(t, "s3", sig.PeerID)
}

func TestDecodeCommand_PayloadFreeTypes(t *testing.T) {
	for _, tc := range []struct {
		msgType string
		want    any
	}{
		{MsgVoiceJoin, VoiceJoin{}},
		{MsgVoiceLeave, VoiceLeave{}},
		{MsgScreenStart, ScreenStart{}},
		{MsgScreenStop, ScreenStop{}},
	} {
		cmd, err := DecodeCommand("s1", tc.msgType, nil)
		require.NoError(t, err, tc.msgType)
		assert.IsType(t, tc.want, cmd, tc.msgType)
		assert.Equal(t, "s1", cmd.Sender())
	}
}

func TestDecodeCommand_ScreenTransform(t *testing.T) {
	cmd, err := DecodeCommand("s1", MsgScreenTransform, json.RawMessage(`{"scale":2.0,"rz":0.5}`))
	require.NoError(t, err)

	tr := cmd.(ScreenTransform)
	require.NotNil(t, tr.Scale)
	assert.Equal(t, 2.0, *tr.Scale)
	require.NotNil(t, tr.RZ)
	assert.Equal(t, 0.5, *tr.RZ)
	assert.Nil(t, tr.X)
	assert.Nil(t, tr.RX)
}

func TestDecodeCommand_UnknownType(t *testing.T) {
	cmd, err := DecodeCommand("s1", "teleport", nil)
	require.Error(t, err)
	assert.Nil(t, cmd)
	assert.Contains(t, err.Error(), "teleport")
}
