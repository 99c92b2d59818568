package binding

import "testing"

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"staff": map[string]any{"full_name": "Jordan Lee"},
		"course": map[string]string{
			"name":       "Networking",
			"sub_column": "",
			"spaced":     "First  Aid",
		},
		"tags": []any{"a", map[string]any{"x": 7}},
	}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hello ${staff.full_name}", "Hello Jordan Lee"},
		{"missing required stays", "Hi ${staff.nick}", "Hi ${staff.nick}"},
		{"optional empty collapses", "Successfully completed the ${course.name} ${course.sub_column?} Course", "Successfully completed the Networking Course"},
		{"optional missing collapses", "A ${course.level?} B", "A B"},
		{"optional present", "${course.name?}!", "Networking!"},
		{"index", "${tags[1].x}-${tags[0]}", "7-a"},
		{"index out of range", "${tags[5]}", "${tags[5]}"},
		{"no placeholders keeps spacing", "a  b", "a  b"},
		{"bound value keeps spacing", "the ${course.spaced} ${course.sub_column?} Course", "the First  Aid Course"},
		{"literal spacing away from drop kept", "A  ${course.name} ${course.level?}", "A  Networking"},
		{"leading optional trimmed", "${course.level?} Course", "Course"},
		{"adjacent optionals", "A ${course.level?} ${course.sub_column?} B", "A B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Interpolate(tc.in, data); got != tc.want {
				t.Fatalf("Interpolate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("x ${a} ${b?}", nil); got != "x ${a}" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestLookup(t *testing.T) {
	v, ok := Lookup(map[string]any{"a": []any{"z"}}, "a[0]")
	if !ok || v != "z" {
		t.Fatalf("lookup failed: %v %v", v, ok)
	}
	if _, ok := Lookup(map[string]any{}, "a.b"); ok {
		t.Fatalf("expected miss")
	}
}
