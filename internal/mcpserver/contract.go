package mcpserver

const formatURI = "supamarker://post-format"

// PostFormatContract describes the Markdown post format accepted by publish_post.
const PostFormatContract = `# Post Format Contract

A post is a UTF-8 Markdown file that starts with a YAML frontmatter block.

## Structure

` + "```" + `markdown
---
title: Human-readable title     # REQUIRED
summary: One-line teaser        # OPTIONAL, defaults to ""
tags: [go, cli]                 # OPTIONAL list, defaults to []
slug: custom-slug               # OPTIONAL, overrides the derived slug
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The ` + "`---`" + ` fences must open the file and the block must be closed by a second ` + "`---`" + `.
   Avoid ` + "`---`" + ` anywhere inside the YAML itself.
2. ` + "`title`" + ` is required and must not be blank.
3. Without ` + "`slug`" + ` the slug is the file name without extension, lowercased with every
   run of other characters turned into one hyphen (` + "`My Post!.md`" + ` becomes ` + "`my-post`" + `).
   When the file name has nothing usable the title is used instead.
4. The whole file, frontmatter included, is stored as ` + "`{bucket}/{slug}.md`" + `.
5. Publishing the same slug again overwrites the metadata row.
`
