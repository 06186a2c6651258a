/*
Package event implements the synchronous event bus that features subscribe to.

Handlers run on the dispatching goroutine in priority order. Cancellable events
stop reaching regular handlers once cancelled; Monitor handlers always observe the
final outcome. Handlers registered with OnGame only see events of one game, which
is how features ignore activity in other arenas.
*/
package event
