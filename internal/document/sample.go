package document

import "github.com/popcanvas/popcanvas/internal/typeid"

// NewSampleCanvas builds the playground design: a newsletter signup modal.
func NewSampleCanvas() *CanvasState {
	s := NewBlankCanvas(LayoutModal)
	s.Background = Background{Type: BackgroundGradient, Value: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"}

	s.Elements = []Element{
		{
			Base: Base{ID: typeid.NewElementID(), Type: ElementText, X: 50, Y: 40, Width: 400, Height: 60, ZIndex: 1},
			Props: TextProps{
				Content:    "Get 10% off your first order",
				FontSize:   28,
				FontWeight: "bold",
				Color:      "#ffffff",
				Align:      "center",
			},
		},
		{
			Base: Base{ID: typeid.NewElementID(), Type: ElementText, X: 50, Y: 110, Width: 400, Height: 40, ZIndex: 2},
			Props: TextProps{
				Content:  "Join the newsletter for early access to new drops.",
				FontSize: 16,
				Color:    "#f0f0f0",
				Align:    "center",
			},
		},
		{
			Base: Base{ID: typeid.NewElementID(), Type: ElementForm, X: 100, Y: 170, Width: 300, Height: 140, ZIndex: 3},
			Props: FormProps{
				Fields: []FormField{
					{ID: "email", Type: "email", Label: "Email", Placeholder: "you@example.com", Required: true},
				},
				SubmitLabel:    "Subscribe",
				SuccessMessage: "Thanks for subscribing!",
			},
		},
		{
			Base:  Base{ID: typeid.NewElementID(), Type: ElementTimer, X: 150, Y: 330, Width: 200, Height: 40, ZIndex: 4},
			Props: TimerProps{DurationSeconds: 900, Label: "Offer ends in", ExpiredText: "Offer expired"},
		},
	}
	return s
}
