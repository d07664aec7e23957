// Package repeater is the boundary to an external request-inspection/replay
// tool. The core never opens connections itself; it hands the final bytes to
// a Dispatcher and falls back through clipboard and display routes so the
// operator always ends up with the request text.
package repeater

import (
	"errors"
	"fmt"
	"io"
)

// Request carries the final wire-ready bytes plus the transport coordinates
// derived from the operator's host field.
type Request struct {
	Host     string
	Port     int
	UseHTTPS bool
	Raw      []byte
	Label    string
}

// Dispatcher hands a request to the external tool, tagged with a label.
type Dispatcher interface {
	Send(host string, port int, useHTTPS bool, raw []byte, label string) error
}

// LegacyDispatcher is the older 4-argument send form without a label. A
// Dispatcher that also implements it is retried through this form when the
// labeled form is rejected.
type LegacyDispatcher interface {
	SendUnlabeled(host string, port int, useHTTPS bool, raw []byte) error
}

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	Copy(text string) error
}

// Display shows text to the operator for manual copying.
type Display interface {
	Show(label, text string) error
}

// Route identifies how a request was ultimately delivered.
type Route string

const (
	RouteDispatched       Route = "dispatcher"
	RouteDispatchedLegacy Route = "dispatcher-legacy"
	RouteClipboard        Route = "clipboard"
	RouteDisplayed        Route = "display"
)

// Deliver tries each route in order: labeled dispatch, unlabeled dispatch,
// clipboard, display. Nil collaborators are skipped. It returns the route
// that succeeded; an error is returned only when every route failed, which
// is the one case where the operator does not end up with the text.
func Deliver(req Request, d Dispatcher, clip Clipboard, disp Display) (Route, error) {
	var errs []error

	if d != nil {
		err := d.Send(req.Host, req.Port, req.UseHTTPS, req.Raw, req.Label)
		if err == nil {
			return RouteDispatched, nil
		}
		errs = append(errs, fmt.Errorf("dispatch: %w", err))
		if ld, ok := d.(LegacyDispatcher); ok {
			err = ld.SendUnlabeled(req.Host, req.Port, req.UseHTTPS, req.Raw)
			if err == nil {
				return RouteDispatchedLegacy, nil
			}
			errs = append(errs, fmt.Errorf("dispatch (unlabeled): %w", err))
		}
	}

	if clip != nil {
		err := clip.Copy(string(req.Raw))
		if err == nil {
			return RouteClipboard, nil
		}
		errs = append(errs, fmt.Errorf("clipboard: %w", err))
	}

	if disp != nil {
		err := disp.Show(req.Label, string(req.Raw))
		if err == nil {
			return RouteDisplayed, nil
		}
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	errs = append(errs, errors.New("repeater: no delivery route succeeded"))
	return "", errors.Join(errs...)
}

// WriterDisplay shows requests on an io.Writer, typically stdout.
type WriterDisplay struct {
	W io.Writer
}

func (d WriterDisplay) Show(label, text string) error {
	if _, err := fmt.Fprintf(d.W, "=== %s ===\n", label); err != nil {
		return err
	}
	_, err := io.WriteString(d.W, text)
	return err
}
