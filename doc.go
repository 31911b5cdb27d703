/*
Package h11 is a sans-I/O HTTP/1.1 connection engine.

It is a pure state machine and byte-stream codec: it performs no
socket I/O itself. Callers feed it bytes read from a transport and
drain bytes it has queued for writing; in return it yields high-level
Events (a request head, body data, end-of-message) and accepts Events
to serialize.

The engine understands:

  - Keep-alive and the legacy HTTP/1.0 read-until-close framing.
  - Content-Length and chunked transfer encoding, including trailers.
  - Expect: 100-continue bookkeeping.
  - CONNECT and Upgrade protocol switches, after which the engine
    stops producing events so the caller can detach the raw
    connection.

It does not: dial or accept connections, speak TLS, pool connections,
route requests, or decode compressed bodies. Those belong to the
integrator wrapping this package with real I/O — see package
integrator for one such wrapping.
*/
package h11
