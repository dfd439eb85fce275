package types

// Client -> Server (JSON text frames on /api/websocket)
//
// access:
//   gameId: string
//   playerId: string // stable across reconnects, kept client-side
//
// join:
//   gameId: string
//   playerId: string
//   name: string
//   avatar: string // single character the webapp renders as a face
//
// start: {} // creator only
//
// type:
//   text: string // non-empty
//
// Binary frames carry the PNG bytes of the drawing for the current draw
// round. There is no JSON envelope for drawings.

// HTTP
//
// POST /api/create:
//   request:  { playerId, playerName, playerAvatar }
//   response: { gameId }
//
// GET /api/image/{gameId}/{image}: stored PNG for a view's previousImage /
// story element content.
