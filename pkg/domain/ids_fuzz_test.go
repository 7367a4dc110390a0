package domain

import "testing"

// FuzzParseApplicationID checks parsing never panics and valid IDs round-trip.
func FuzzParseApplicationID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseApplicationID(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Error("parse accepted a nil ID")
		}
		roundTrip, err := ParseApplicationID(id.String())
		if err != nil {
			t.Errorf("valid ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
	})
}
