// Package router maps free-form user text to the specialist handler best
// suited to answer it. Routing is keyword scoring, not natural-language
// understanding: each handler category owns a fixed set of case-insensitive
// trigger phrases and the category with the most triggers present in the
// text wins. Ties are reported as ambiguous so the caller can ask the user
// to disambiguate instead of guessing.
//
// The package also provides script-based language detection for the
// supported input languages.
package router
