package catalog

const speedTranscript = `
This is our first China stream, y'all! We are, bro chat, we actually here, bro! We are actually here.
Chat, when I told y'all, bro, when I tell y'all I've been wanting to go to China since I was a kid, bro!
So Chat, this is honestly crazy cuz Chat, we learned so much about China at school.
`

const chineseTrumpTranscript = `
They tried to steal my account, they tried to silence me, they want me gone, they want me disappear.
But guess what? They almost hit me. That was a close one, but they always miss.
Now I'm back! Stronger, louder, and funnier than ever.
`

const peterGriffinTranscript = `
I walked into the kitchen and sat down at the table. I looked with a Grimace at the questionable meal Lois
had placed in front of me. Of course I'd never tell her how disgusted I was with her cooking, but somehow I think she knew.
Lois had always been full of energy and life, but lately I had begun to grow more aware of her aging. The bright exuberant
eyes that I had fallen in love with were now beginning to grow dull and listless with the long fatigue of a weary life.
`

const spongebobTranscript = `
All right! Ooops! I guess I rip my pants again. I'm on my way! Ready for another great day together, friend.
Hey, guys! Better pack some ice. It's gonna be a hot one. What is that smell.
`

const chineseTrumpScene = "In this audio, the person is impersonating Donald Trump's voice. The pacing is measured, with strategic pauses to let insults land. The delivery should feel like a series of dismissive proclamations, consistently patronizing the streamer and methodically building up the roast with each message. The speaker is in a quiet room with NO music."

// references is the built-in persona table. The audio file for each entry is
// expected at {key}_voice.wav under the reference directory.
var references = map[string]reference{
	"speed": {
		transcript: speedTranscript,
		sceneDesc:  "The tone is extremely high-energy and excited. The speaker talks fast and loudly.",
	},
	"chinese_trump": {
		transcript: chineseTrumpTranscript,
		sceneDesc:  chineseTrumpScene,
	},
	"peter_griffin": {
		transcript: peterGriffinTranscript,
	},
	"spongebob": {
		transcript: spongebobTranscript,
	},
}

type reference struct {
	transcript string
	sceneDesc  string
}
