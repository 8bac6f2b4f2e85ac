/*
Package domain contains the core domain models for the Inquest engine.

It defines the fundamental entities of an evaluation run, such as chat
messages, the mutable TaskState threaded through a solver plan, model
output, and the error taxonomy. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - ChatMessage: A single role-tagged message in a conversation.
  - TaskState: The runtime snapshot of one sample's run (messages, output,
    completion flag, solver metadata).
  - ModelOutput: The result of a single model generation.
  - RunRecord: The persisted outcome of one plan run.
*/
package domain
