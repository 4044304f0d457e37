package bot

const welcomeText = `👋 *Welcome to Lock-In Pal Bot*, your forex trade assistant.

Here's what I can help you do:
📊 Calculate trade risk & reward with /riskcalc
⏰ Set trade reminders using /remind
📝 Log and manage your trades with /journal, /edittrade, /deletetrade
📄 Save entries to your *Google Sheet* via /linksheet
📌 Export your logs with /export

🔗 *First time here?* Use /sheethelp to learn how to get your Sheet ID, then /linksheet SHEET\_ID to connect.`

const sheetHelpText = "📘 *How to Get Your Google Sheet ID*:\n\n" +
	"1. Open your Google Sheet in a browser.\n" +
	"2. Look at the URL, something like:\n" +
	"`https://docs.google.com/spreadsheets/d/1ABCD123XYZ/edit#gid=0`\n" +
	"3. Copy the long string between `/d/` and `/edit`: that is your *Sheet ID*.\n\n" +
	"🛡️ *IMPORTANT*: share the sheet with the bot so it can edit it.\n" +
	"Go to the sheet > Share > add `%s` as an editor.\n\n" +
	"Then link it:\n`/linksheet 1ABCD123XYZ`"

const privacyText = "🔐 *Privacy Policy*\n\n" +
	"This bot helps traders with risk management, journaling and trade reminders.\n\n" +
	"We do not collect or store personal information.\n" +
	"Trade data is either:\n" +
	"• kept by the bot in a local journal (for unlinked users), or\n" +
	"• saved directly to your linked Google Sheet, controlled solely by you.\n\n" +
	"Sheet access is only used to read and write your trade rows. " +
	"You can revoke it anytime with /unlinksheet or by removing the bot's service account from the sheet."
