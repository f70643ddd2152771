// Package datetext converts free-form date text scraped from venue pages into
// canonical instants.
//
// Parse is a pure function: it never consults the wall clock and never panics.
// Unparseable input is reported through the ok return, not papered over with a
// default value. When the text carries no year, the year is inferred from the
// reference instant on the assumption that listings are near-future: a month
// earlier than the reference month rolls into the next year.
package datetext
