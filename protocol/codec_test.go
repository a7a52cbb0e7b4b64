package protocol

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b, err := Encode(MsgSyncPosition, Position{PlayerID: 3, X: 100, Y: 250})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.T != MsgSyncPosition {
		t.Fatalf("envelope type = %q, want %q", env.T, MsgSyncPosition)
	}
	pos, err := DecodePayload[Position](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if pos.PlayerID != 3 || pos.X != 100 || pos.Y != 250 {
		t.Fatalf("payload round trip = %+v", pos)
	}
}

func TestEncodeRejectsEmptyType(t *testing.T) {
	if _, err := Encode("", Position{}); err == nil {
		t.Fatalf("expected error for empty envelope type")
	}
}

func TestEncodeRejectsNilPayload(t *testing.T) {
	if _, err := Encode(MsgShoot, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}

func TestDecodeEnvelopeEmpty(t *testing.T) {
	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatalf("expected error for empty envelope bytes")
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	if _, err := DecodePayload[Direction](Envelope{T: MsgSyncDirection}); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestTimingSanity(t *testing.T) {
	if SimTickHz <= 0 {
		t.Fatalf("SimTickHz must be > 0")
	}
	if PositionSyncFrames <= 0 {
		t.Fatalf("PositionSyncFrames must be > 0")
	}
}
