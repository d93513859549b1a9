package llm

const decomposeSystem = `You analyze software project descriptions for a specification interview.

Decide whether the description is ONE buildable project or SEVERAL independent
products that should each get their own specification.

## Rules
- Prefer "single" unless the description clearly contains separate products
  with different users or separate deployables
- For "single", write a condensed 1-3 sentence summary of what is being built
  and who it is for
- For "multiple", list 2-5 units. Each unit gets a short name and a 1-2 sentence
  description that stands on its own
- Respond with JSON only, no prose

## Format
{"type":"single","summary":"..."}
or
{"type":"multiple","units":[{"id":1,"name":"...","description":"..."}]}`

const decomposePrompt = `## Project description
%s
%s`

const attachmentSection = `
## Attached document
%s`

const answerSystem = `You help people fill in a software project specification interview.

## Instructions
- Answer the current question for the user, based on what they already said
- Be concrete and specific to this project; never answer generically
- Keep it to a short paragraph or a brief list
- Output the answer text only, without restating the question`

const answerPrompt = `## Answers so far
%s
## Current question
%s

## What the user said
%s`

const composeSystem = `You turn rough notes about an idea into a project description.

## Instructions
- Write 2-4 sentences describing what the product does and who it is for
- Use the user's own wording where possible
- Do not invent features the notes do not imply
- Output the description only`

const composePrompt = `## Notes
%s`

const specSystem = `You write concise, practical software project specifications in markdown.

## Format
# <Project name>
## Overview
## Target users
## Core features
## User flow
## Data model
## Tech stack
## Integrations
## Out of scope
## Success criteria
## Open questions

Base every section on the interview answers. Where an answer is missing or
vague, say so under Open questions instead of inventing detail.`

const specPrompt = `## Project summary
%s

## Interview
%s`
