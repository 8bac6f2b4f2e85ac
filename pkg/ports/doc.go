/*
Package ports defines the interfaces between the Inquest core and the
outside world (Hexagonal Architecture).

The engine depends only on these contracts; adapters (Redis, HTTP, mock
backends) implement them. This keeps the plan executor testable and free
of infrastructure concerns.
*/
package ports
