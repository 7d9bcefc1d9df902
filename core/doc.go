// Package core contains the canonical auth domain contracts, entities, and
// token lifecycle orchestration. Store adapters and provider extractors must
// depend on this package; core must not depend on transport or persistence
// specifics.
package core
