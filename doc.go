/*
Package vicinity is a session-backed onboarding wizard and directory engine
for local business listings.

It models business onboarding as a fixed sequence of validated steps.
Progress lives entirely in a per-browser session: each successful step
submission stores its validated fields, backward navigation pre-fills from
the stored data, and skipping ahead redirects to the lowest incomplete step.
A final submission merges every step into one listing record, writes it
atomically with a unique slug, and wipes the session. New listings start in
moderation and only become publicly visible once approved.

# Architecture

The core is hexagonal. The wizard engine (pkg/wizard) is pure with respect
to persistence: it operates on an explicit session value and leaves storage
to the caller. Stores are ports (pkg/ports) with in-memory, Redis, and
PostgreSQL adapters, plus composable store middleware such as at-rest
encryption (pkg/persistence/middleware). HTTP and MCP adapters expose the
same engine.

# Usage

The App facade wires everything with memory backends by default:

	package main

	import (
		"context"
		"log"

		"github.com/vicinitylabs/vicinity"
		"github.com/vicinitylabs/vicinity/pkg/domain"
	)

	func main() {
		app := vicinity.New()
		ctx := context.Background()

		sess := domain.NewWizardSession("session-123")

		// Submit the first step.
		outcome, err := app.Wizard.SubmitStep(ctx, sess, 1, map[string]string{
			"business_name": "Acme Corp",
			"business_type": "LLC",
			"industry":      "Technology",
			"description":   "We make everything",
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("next step: %d, progress: %d%%", outcome.NextStep, outcome.Progress)

		// ...submit the remaining steps, then:
		confirmation, err := app.Wizard.SubmitFinal(ctx, sess)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("listing created: %s", confirmation.Slug)
	}
*/
package vicinity
