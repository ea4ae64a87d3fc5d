package access

import "testing"

func TestCanEnterMatrix(t *testing.T) {
	// Exhaustive 4x4 table: true exactly when the room sits at the member's
	// tier or lower in the trust order.
	want := map[Level]map[Level]bool{
		Alto:      {Alto: true, Medio: true, Baixo: true, Convidado: true},
		Medio:     {Alto: false, Medio: true, Baixo: true, Convidado: true},
		Baixo:     {Alto: false, Medio: false, Baixo: true, Convidado: true},
		Convidado: {Alto: false, Medio: false, Baixo: false, Convidado: true},
	}

	for _, level := range Levels {
		for _, room := range Levels {
			if got := CanEnter(level, room); got != want[level][room] {
				t.Errorf("CanEnter(%s, %s) = %v, want %v", level, room, got, want[level][room])
			}
		}
	}
}

func TestCanRequestMatrix(t *testing.T) {
	want := map[Level]map[RequestType]bool{
		Alto:      {Evacuation: true, Communication: true, Resources: true},
		Medio:     {Evacuation: true, Communication: true, Resources: true},
		Baixo:     {Evacuation: false, Communication: true, Resources: true},
		Convidado: {Evacuation: false, Communication: false, Resources: true},
	}

	for _, level := range Levels {
		for _, rt := range RequestTypes {
			if got := CanRequest(level, rt); got != want[level][rt] {
				t.Errorf("CanRequest(%s, %s) = %v, want %v", level, rt, got, want[level][rt])
			}
		}
	}
}

func TestCanResolveMatrix(t *testing.T) {
	want := map[Level]map[RequestType]bool{
		Alto:      {Evacuation: true, Communication: true, Resources: true},
		Medio:     {Evacuation: false, Communication: true, Resources: true},
		Baixo:     {Evacuation: false, Communication: false, Resources: true},
		Convidado: {Evacuation: false, Communication: false, Resources: false},
	}

	for _, level := range Levels {
		for _, rt := range RequestTypes {
			if got := CanResolve(level, rt); got != want[level][rt] {
				t.Errorf("CanResolve(%s, %s) = %v, want %v", level, rt, got, want[level][rt])
			}
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"alto", Alto, false},
		{"ALTO", Alto, false},
		{" Medio ", Medio, false},
		{"baixo", Baixo, false},
		{"convidado", Convidado, false},
		{"root", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
