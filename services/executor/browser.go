package executor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Selectors names the page elements the browser automation interacts with.
type Selectors struct {
	Slot         string // format string receiving date and time
	Name         string
	Email        string
	Phone        string
	Submit       string
	Confirmation string
	Error        string
}

// DefaultSelectors match the data attributes used by the supported booking pages.
var DefaultSelectors = Selectors{
	Slot:         `[data-date=%q][data-time=%q]`,
	Name:         `input[name="name"]`,
	Email:        `input[name="email"]`,
	Phone:        `input[name="phone"]`,
	Submit:       `button[type="submit"]`,
	Confirmation: `[data-role="confirmation"]`,
	Error:        `[data-role="error"]`,
}

// BrowserAutomation drives a real Chrome instance through chromedp.
type BrowserAutomation struct {
	Headless  bool
	Selectors Selectors
	Logger    *zap.Logger
}

func NewBrowserAutomation(headless bool, logger *zap.Logger) *BrowserAutomation {
	return &BrowserAutomation{Headless: headless, Selectors: DefaultSelectors, Logger: logger}
}

func (b *BrowserAutomation) newBrowser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

func (b *BrowserAutomation) Book(ctx context.Context, req Request) (Outcome, error) {
	if req.URL == "" {
		return Outcome{}, &AutomationError{Step: "open", Err: errors.New("provider has no booking page")}
	}
	bctx, cancel := b.newBrowser(ctx)
	defer cancel()

	slot := fmt.Sprintf(b.Selectors.Slot, req.Date, req.Time)
	if err := chromedp.Run(bctx, chromedp.Navigate(req.URL), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return Outcome{}, &AutomationError{Step: "open", Err: err}
	}
	present, err := b.exists(bctx, slot)
	if err != nil {
		return Outcome{}, &AutomationError{Step: "find slot", Err: err}
	}
	if !present {
		return Outcome{}, &AutomationError{Step: "find slot", Err: fmt.Errorf("slot %s %s is not offered", req.Date, req.Time)}
	}
	if err := chromedp.Run(bctx, chromedp.Click(slot, chromedp.ByQuery)); err != nil {
		return Outcome{}, &AutomationError{Step: "pick slot", Err: err}
	}
	return b.submit(bctx, req)
}

func (b *BrowserAutomation) FillForm(ctx context.Context, req Request) (Outcome, error) {
	if req.URL == "" {
		return Outcome{}, &AutomationError{Step: "open", Err: errors.New("no form url")}
	}
	bctx, cancel := b.newBrowser(ctx)
	defer cancel()

	if err := chromedp.Run(bctx, chromedp.Navigate(req.URL), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return Outcome{}, &AutomationError{Step: "open", Err: err}
	}
	return b.submit(bctx, req)
}

// submit fills whichever contact fields the page has, submits, and reads back the confirmation.
func (b *BrowserAutomation) submit(ctx context.Context, req Request) (Outcome, error) {
	if req.Profile != nil {
		fields := []struct{ sel, value string }{
			{b.Selectors.Name, req.Profile.Name},
			{b.Selectors.Email, req.Profile.Email},
			{b.Selectors.Phone, req.Profile.Phone},
		}
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			present, err := b.exists(ctx, f.sel)
			if err != nil {
				return Outcome{}, &AutomationError{Step: "fill", Err: err}
			}
			if !present {
				continue
			}
			if err := chromedp.Run(ctx, chromedp.SetValue(f.sel, "", chromedp.ByQuery), chromedp.SendKeys(f.sel, f.value, chromedp.ByQuery)); err != nil {
				return Outcome{}, &AutomationError{Step: "fill", Err: err}
			}
		}
	}

	if err := chromedp.Run(ctx, chromedp.Click(b.Selectors.Submit, chromedp.ByQuery)); err != nil {
		return Outcome{}, &AutomationError{Step: "submit", Err: err}
	}

	sel := b.Selectors.Confirmation + ", " + b.Selectors.Error
	if err := chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return Outcome{}, &AutomationError{Step: "confirm", Err: err}
	}
	failed, err := b.exists(ctx, b.Selectors.Error)
	if err != nil {
		return Outcome{}, &AutomationError{Step: "confirm", Err: err}
	}
	if failed {
		var msg string
		_ = chromedp.Run(ctx, chromedp.Text(b.Selectors.Error, &msg, chromedp.ByQuery))
		return Outcome{}, &AutomationError{Step: "submit", Err: errors.New(strings.TrimSpace(msg))}
	}

	var text string
	if err := chromedp.Run(ctx, chromedp.Text(b.Selectors.Confirmation, &text, chromedp.ByQuery)); err != nil {
		return Outcome{}, &AutomationError{Step: "confirm", Err: err}
	}
	if b.Logger != nil {
		b.Logger.Debug("page confirmed submission", zap.String("url", req.URL))
	}
	return Outcome{ConfirmationText: strings.TrimSpace(text)}, nil
}

func (b *BrowserAutomation) exists(ctx context.Context, sel string) (bool, error) {
	var ok bool
	expr := fmt.Sprintf("document.querySelector(%s) !== null", strconv.Quote(sel))
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

var _ Automation = (*BrowserAutomation)(nil)
