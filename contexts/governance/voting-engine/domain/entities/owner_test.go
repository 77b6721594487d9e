package entities

import "testing"

func TestOwnerDisplayName(t *testing.T) {
	cases := []struct {
		name  string
		owner Owner
		want  string
	}{
		{"full name", Owner{LastName: "Shevchenko", FirstName: "Taras", MiddleName: "Hryhorovych"}, "Shevchenko T.H."},
		{"no middle name", Owner{LastName: "Shevchenko", FirstName: "Taras"}, "Shevchenko T."},
		{"surname only", Owner{LastName: "Shevchenko"}, "Shevchenko"},
		{"initials only", Owner{FirstName: "Taras", MiddleName: "Hryhorovych"}, "T.H."},
		{"all empty", Owner{}, "—"},
		{"whitespace only", Owner{LastName: "  ", FirstName: " "}, "—"},
		{"cyrillic initials", Owner{LastName: "Шевченко", FirstName: "Тарас", MiddleName: "Григорович"}, "Шевченко Т.Г."},
	}
	for _, tc := range cases {
		if got := tc.owner.DisplayName(); got != tc.want {
			t.Fatalf("%s: DisplayName() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
