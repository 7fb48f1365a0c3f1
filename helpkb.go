// Package helpkb turns crawled help pages into a searchable knowledge base.
// It crawls a documentation site, trims each page into heading-tagged text,
// groups the text into h1/h2/h3 chunks, derives topics, keywords and
// questions from those chunks, and answers free-text queries by fusing
// nearest-neighbor results from three retrieval indices.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, hnsw/).
package helpkb
