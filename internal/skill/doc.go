// Package skill validates, scaffolds and packages skill directories.
//
// A skill is a directory under skills/ named in kebab-case and holding a
// SKILL.md file whose YAML frontmatter declares at least name and
// description:
//
//	---
//	name: code-reviewer
//	description: Reviews pull requests for style and correctness.
//	---
//
// The frontmatter name must match the directory name. Validation functions
// return human-readable problems rather than errors so callers can report
// every problem at once.
package skill
