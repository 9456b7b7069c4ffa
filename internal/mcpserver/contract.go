package mcpserver

// RecordFormatContract describes the memo file line format for LLM
// consumers.
const RecordFormatContract = `# Memo Record Format

The memo file is UTF-8 text with one note per line. Every line has four
fields separated by a single TAB character and ends with a newline:

` + "```" + `
<id>\t<status>\t<date>\t<content>
` + "```" + `

## Fields

1. **id**: positive decimal integer. Unique within the file. New notes get the
   largest existing id plus one, so gaps appear after deletes until the notes
   are organized.
2. **status**: one letter.
   - ` + "`U`" + ` undone (every new note starts here)
   - ` + "`D`" + ` done
   - ` + "`P`" + ` postponed
   Any status may change to any other.
3. **date**: ` + "`YYYY-MM-DD`" + `, a real calendar date. Dates are compared as text.
4. **content**: the rest of the line. It may contain TAB characters but never
   a line break.

## Example

` + "```" + `
1	U	2024-03-01	buy milk
2	D	2024-03-02	call bob
5	P	2024-03-02	renew passport
` + "```" + `

## Tools

- Use ` + "`add_note`" + ` for new notes; ids and status are assigned for you.
- ` + "`list_notes`" + ` with ` + "`latest=n`" + ` skips the first n+1 notes.
- ` + "`search_notes`" + ` is a case-sensitive substring match on date or content.
- ` + "`match_notes`" + ` matches a case-insensitive regular expression at the
  start of content only.
`
