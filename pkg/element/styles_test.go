package element

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

func TestStylesSetKeepsPosition(t *testing.T) {
	s := NewStyles("color", "blue", "fontSize", "16px")
	s.Set("color", "red")
	s.Set("margin", "0")

	want := []string{"color", "fontSize", "margin"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := s.Value("color"); got != "red" {
		t.Errorf("Value(color) = %q, want red", got)
	}
}

func TestStylesDelete(t *testing.T) {
	s := NewStyles("a", "1", "b", "2", "c", "3")
	s.Delete("b")
	s.Delete("missing")

	if got := s.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Keys() = %v, want [a c]", got)
	}
	if _, ok := s.Get("b"); ok {
		t.Error("Get(b) should report missing after Delete")
	}
}

func TestStylesCloneIsIndependent(t *testing.T) {
	orig := NewStyles("color", "blue")
	c := orig.Clone()
	c.Set("color", "red")
	c.Set("margin", "0")

	if orig.Value("color") != "blue" || orig.Len() != 1 {
		t.Errorf("original modified through clone: %v", orig.Keys())
	}
}

func TestStylesMerged(t *testing.T) {
	base := NewStyles("color", "blue", "fontSize", "16px", "margin", "0")
	got := base.Merged(NewStyles("fontSize", "20px", "padding", "4px"))

	want := NewStyles("color", "blue", "fontSize", "20px", "margin", "0", "padding", "4px")
	if !got.Equal(want) {
		t.Errorf("Merged() = %v, want %v", got.Keys(), want.Keys())
	}
	if base.Value("fontSize") != "16px" {
		t.Error("Merged modified its receiver")
	}
}

func TestStylesJSONPreservesOrder(t *testing.T) {
	input := `{"zIndex":"2","color":"blue","alignItems":"center","fontSize":"16px"}`

	var s Styles
	if err := json.Unmarshal([]byte(input), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"zIndex", "color", "alignItems", "fontSize"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != input {
		t.Errorf("Marshal() = %s, want %s", out, input)
	}
}

func TestStylesJSONScalars(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Styles
		wantErr bool
	}{
		{"null", `null`, Styles{}, false},
		{"empty", `{}`, Styles{}, false},
		{"number", `{"opacity":0.5,"zIndex":10}`, NewStyles("opacity", "0.5", "zIndex", "10"), false},
		{"null value skipped", `{"color":null,"margin":"0"}`, NewStyles("margin", "0"), false},
		{"nested object", `{"color":{"r":1}}`, Styles{}, true},
		{"array", `["color"]`, Styles{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Styles
			err := json.Unmarshal([]byte(tt.input), &s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !s.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, s.Keys(), tt.want.Keys())
			}
		})
	}
}

func TestStylesEmptyMarshalsAsObject(t *testing.T) {
	out, err := json.Marshal(Element{ID: "a", Type: TypeText})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["styles"].(map[string]any); !ok {
		t.Errorf("styles = %v, want empty object", m["styles"])
	}
}

func TestStylesBSONPreservesOrder(t *testing.T) {
	el := Element{
		ID:     "heading_1",
		Type:   TypeHeading,
		Styles: NewStyles("zIndex", "3", "color", "blue", "backgroundColor", "#fff"),
	}

	data, err := bson.Marshal(el)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	var got Element
	if err := bson.Unmarshal(data, &got); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	if !got.Styles.Equal(el.Styles) {
		t.Errorf("Styles = %v, want %v", got.Styles.Keys(), el.Styles.Keys())
	}
}

func TestStylesBSONNumericValues(t *testing.T) {
	doc := bson.D{{Key: "styles", Value: bson.D{{Key: "zIndex", Value: int32(4)}, {Key: "opacity", Value: 0.25}}}}
	data, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Styles Styles `bson:"styles"`
	}
	if err := bson.Unmarshal(data, &got); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	want := NewStyles("zIndex", "4", "opacity", "0.25")
	if !got.Styles.Equal(want) {
		t.Errorf("Styles = %v/%v, want zIndex=4 opacity=0.25", got.Styles.Value("zIndex"), got.Styles.Value("opacity"))
	}
}

func TestStylesYAMLPreservesOrder(t *testing.T) {
	input := `
styles:
  textAlign: center
  color: "#333"
  fontSize: 48px
  opacity: 1
`
	var got struct {
		Styles Styles `yaml:"styles"`
	}
	if err := yaml.Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	want := NewStyles("textAlign", "center", "color", "#333", "fontSize", "48px", "opacity", "1")
	if !got.Styles.Equal(want) {
		t.Errorf("Styles keys = %v, want %v", got.Styles.Keys(), want.Keys())
	}

	out, err := yaml.Marshal(got)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	var again struct {
		Styles Styles `yaml:"styles"`
	}
	if err := yaml.Unmarshal(out, &again); err != nil {
		t.Fatalf("yaml.Unmarshal round trip: %v", err)
	}
	if !again.Styles.Equal(want) {
		t.Errorf("round trip keys = %v, want %v", again.Styles.Keys(), want.Keys())
	}
}

func TestStylesYAMLRejectsNested(t *testing.T) {
	var got struct {
		Styles Styles `yaml:"styles"`
	}
	err := yaml.Unmarshal([]byte("styles:\n  color:\n    r: 1\n"), &got)
	if err == nil {
		t.Error("expected error for nested mapping value")
	}
}

func TestStylesInline(t *testing.T) {
	tests := []struct {
		name string
		in   Styles
		want string
	}{
		{"empty", Styles{}, ""},
		{"single", NewStyles("color", "blue"), "color: blue"},
		{"order and case", NewStyles("fontSize", "16px", "color", "blue", "z-index", "2"), "font-size: 16px; color: blue; z-index: 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Inline(); got != tt.want {
				t.Errorf("Inline() = %q, want %q", got, tt.want)
			}
		})
	}
}
