// Package tmdb talks to The Movie Database API: discover and search
// listings per content kind, and full detail payloads with embedded
// genres, watch providers, credits, and (for series) seasons with
// episodes. Failures reaching or reading the provider are tagged with
// services.ErrProvider so orchestration can classify them.
package tmdb
