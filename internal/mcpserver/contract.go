package mcpserver

// FrontmatterContract describes the front-matter keys that give a note its
// display label when it is linked.
const FrontmatterContract = `# MathLinks Front-matter Contract

A note chooses how links to it are displayed through two optional
front-matter keys. Labels may embed inline math between single dollar signs.

## Keys

` + "```" + `markdown
---
mathLink: $\mathbb{R}$ is complete   # OPTIONAL – label shown for [[note]]
mathLink-blocks:                     # OPTIONAL – labels for [[note#^id]]
  def: completeness axiom
  thm1: $\sup A$ exists
---
` + "```" + `

## Rules

1. ` + "`" + `mathLink` + "`" + ` is a string. The value ` + "`" + `auto` + "`" + ` generates the label from the
   note's file name using the configured templates, applied in order.
2. ` + "`" + `mathLink-blocks` + "`" + ` maps a block id (without the ` + "`" + `^` + "`" + `) to its label. The
   block must exist in the note body as a trailing ` + "`" + `^id` + "`" + ` anchor.
3. A block label is shown with the configured block prefix (` + "`" + `^` + "`" + ` by default). When
   the filename prefix setting is on it reads ` + "`" + `<note label> > ^<block label>` + "`" + `.
4. Links to a heading show the heading text, prefixed the same way.
5. Links written with an alias (` + "`" + `[[note|text]]` + "`" + `) keep their alias.
6. Math is delimited by single dollar signs with no whitespace before the
   closing one: ` + "`" + `$x^2$` + "`" + `. Everything else is plain text.
7. Notes in excluded folders or files are rendered without labels.

## Accounts

Tools can also supply labels without editing files, through an account keyed
by a caller identity (` + "`" + `update_account_metadata` + "`" + `). Account labels take
precedence over front-matter labels. Deleting the account removes them.

## Example

` + "```" + `markdown
---
mathLink: auto
mathLink-blocks:
  lem: $\epsilon$-$\delta$ lemma
---

# Continuity

A function is continuous when ... ^lem
` + "```" + `
`
