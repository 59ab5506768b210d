package nlp

import "testing"

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"pls help me", "please help me"},
		{"thx for the reply", "thanks for the reply"},
		{"can u check ur records", "can you check you records"},
		{"PLZ\thelp\nnow", "please help now"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Preprocess(tt.in); got != tt.want {
			t.Fatalf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
