package types

// Server -> Client: every frame is one view object with a "state"
// discriminator. PlayerInfo is { name, avatar, isCreator }; ids never leave
// the server.
//
// join: {} // unknown player, game still waiting
//
// alreadyStarted: {} // unknown player, game running
//
// waitForPlayers: // creator's waiting room
//   players: PlayerInfo[]
//
// waitForGameStart: // guest's waiting room
//   players: PlayerInfo[]
//
// type:
//   round: number // 1-based
//   rounds: number
//   previousImage?: string // image URL; absent in round 1
//   previousPlayer?: PlayerInfo
//
// draw:
//   round: number
//   rounds: number
//   text: string
//   previousPlayer: PlayerInfo
//
// waitForRoundFinish:
//   playersNotFinished: PlayerInfo[]
//   typeRound: boolean
//
// stories: // final state, sent to everyone
//   stories: { elements: { type: "text"|"image", content, player: PlayerInfo }[] }[]
//
// error:
//   error: string // bad json / empty text / game not found / unknown action
