package element

// Patch is a partial update to an element. Nil fields are left unchanged;
// Styles is merged key by key, so an empty Styles changes nothing.
//
// Id and type are not patchable.
type Patch struct {
	Content *string  `json:"content,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Styles  Styles   `json:"styles,omitempty"`
	Locked  *bool    `json:"locked,omitempty"`
	Hidden  *bool    `json:"hidden,omitempty"`

	Src         *string `json:"src,omitempty"`
	Placeholder *string `json:"placeholder,omitempty"`
	Alt         *string `json:"alt,omitempty"`
	URL         *string `json:"url,omitempty"`
	VideoURL    *string `json:"videoUrl,omitempty"`
	InputType   *string `json:"inputType,omitempty"`

	Children *[]Element `json:"children,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Styles.Len() == 0 && !p.touchesGeometry() && !p.touchesContent() &&
		p.Locked == nil && p.Hidden == nil
}

// TouchesLocked reports whether the patch edits fields a locked element
// refuses: geometry and content. Style, visibility and lock changes pass.
func (p Patch) TouchesLocked() bool {
	return p.touchesGeometry() || p.touchesContent()
}

func (p Patch) touchesGeometry() bool {
	return p.X != nil || p.Y != nil || p.Width != nil || p.Height != nil
}

func (p Patch) touchesContent() bool {
	return p.Content != nil || p.Src != nil || p.Placeholder != nil || p.Alt != nil ||
		p.URL != nil || p.VideoURL != nil || p.InputType != nil || p.Children != nil
}

// Merge returns e with p applied. Neither argument is modified.
func Merge(e Element, p Patch) Element {
	out := e.Clone()
	out.Styles = e.Styles.Merged(p.Styles)

	setString(&out.Content, p.Content)
	setFloat(&out.X, p.X)
	setFloat(&out.Y, p.Y)
	setFloat(&out.Width, p.Width)
	setFloat(&out.Height, p.Height)
	setBool(&out.Locked, p.Locked)
	setBool(&out.Hidden, p.Hidden)
	setString(&out.Src, p.Src)
	setString(&out.Placeholder, p.Placeholder)
	setString(&out.Alt, p.Alt)
	setString(&out.URL, p.URL)
	setString(&out.VideoURL, p.VideoURL)
	setString(&out.InputType, p.InputType)
	if p.Children != nil {
		out.Children = CloneAll(*p.Children)
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }
