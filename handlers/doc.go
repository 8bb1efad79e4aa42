// Package handlers implements the specialist handlers conversations are
// handed off to: disease diagnosis, soil analysis, weather advice, market
// prices, government scheme navigation, finance calculation and community
// advice. Handlers are stateless; everything they need arrives in the
// handoff context and the user message.
package handlers
