package main

// dashboardHTML is the embedded single-page control panel. It renders the
// status snapshot pushed over /api/ws, falling back to polling /api/status
// when the socket drops.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Mine Scheduler</title>
	<style>
		* { margin: 0; padding: 0; box-sizing: border-box; }
		body {
			font-family: 'Segoe UI', sans-serif;
			background: linear-gradient(135deg, #1a1a2e 0%, #16213e 100%);
			color: #e0e0e0;
			min-height: 100vh;
			padding: 20px;
		}
		.container { max-width: 1100px; margin: 0 auto; }
		header {
			text-align: center;
			padding: 25px 0;
			background: rgba(255,255,255,0.05);
			border-radius: 16px;
			margin-bottom: 20px;
		}
		h1 {
			font-size: 2.2em;
			background: linear-gradient(90deg, #00d9ff, #a855f7);
			-webkit-background-clip: text;
			-webkit-text-fill-color: transparent;
		}
		.controls { display: flex; gap: 15px; justify-content: center; margin: 20px 0; }
		button {
			padding: 14px 36px;
			font-size: 1.05em;
			font-weight: bold;
			border: none;
			border-radius: 10px;
			cursor: pointer;
			text-transform: uppercase;
		}
		.btn-start { background: linear-gradient(135deg, #00d9ff, #00ff88); color: #000; }
		.btn-stop { background: linear-gradient(135deg, #ff4757, #ff6b81); color: #fff; }
		.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 14px; margin: 20px 0; }
		.stat-card {
			background: rgba(255,255,255,0.05);
			padding: 18px;
			border-radius: 12px;
			text-align: center;
			border: 1px solid rgba(255,255,255,0.1);
		}
		.stat-card h3 { color: #00d9ff; font-size: 1.8em; }
		.stat-card p { color: #888; font-size: 0.85em; margin-top: 4px; }
		table { width: 100%; border-collapse: collapse; margin: 16px 0; background: rgba(255,255,255,0.03); border-radius: 12px; overflow: hidden; }
		th, td { padding: 12px; text-align: left; border-bottom: 1px solid rgba(255,255,255,0.05); }
		th { background: rgba(0,217,255,0.1); color: #00d9ff; }
		.logs {
			background: rgba(0,0,0,0.3);
			border-radius: 12px;
			padding: 16px;
			max-height: 300px;
			overflow-y: auto;
			font-family: 'Consolas', monospace;
			font-size: 0.85em;
		}
		.log-entry { padding: 4px 0; border-bottom: 1px solid rgba(255,255,255,0.05); }
		.log-info { color: #00d9ff; }
		.log-success { color: #00ff88; }
		.log-warn { color: #ffa502; }
		.log-error { color: #ff4757; }
		.log-time { color: #666; }
		.status-running { color: #00ff88; }
		.status-stopped { color: #ff4757; }
		.status-waiting { color: #ffa502; }
	</style>
</head>
<body>
	<div class="container">
		<header>
			<h1>MINE SCHEDULER</h1>
		</header>
		<div class="controls">
			<button class="btn-start" onclick="startAll()">Start All</button>
			<button class="btn-stop" onclick="stopAll()">Stop All</button>
		</div>
		<div class="stats">
			<div class="stat-card"><h3 id="total">0</h3><p>Accounts</p></div>
			<div class="stat-card"><h3 id="running">0</h3><p>Running</p></div>
			<div class="stat-card"><h3 id="payer">-</h3><p>Fee Payer</p></div>
		</div>
		<table>
			<thead><tr><th>#</th><th>Account</th><th>Cooldown</th><th>Status</th></tr></thead>
			<tbody id="accounts"></tbody>
		</table>
		<div class="logs" id="logs"></div>
	</div>
	<script>
		function render(data) {
			document.getElementById('total').textContent = data.total;
			document.getElementById('running').textContent = data.running;
			document.getElementById('payer').textContent = data.fee_payer || '-';

			const tbody = document.getElementById('accounts');
			tbody.innerHTML = '';
			(data.accounts || []).forEach((acc, i) => {
				const cls = acc.running ?
					(acc.phase === 'waiting' ? 'status-waiting' : 'status-running') :
					'status-stopped';
				tbody.innerHTML += '<tr><td>' + (i + 1) + '</td><td>' + acc.name +
					'</td><td>' + acc.cooldown + 's</td><td class="' + cls + '">' +
					acc.status + '</td></tr>';
			});

			document.getElementById('logs').innerHTML = (data.logs || []).map(l =>
				'<div class="log-entry"><span class="log-time">[' + l.time + ']</span> ' +
				'<span class="log-' + l.level + '">[' + l.account + ']</span> ' + l.msg + '</div>'
			).join('');
		}

		function poll() {
			fetch('/api/status').then(r => r.json()).then(render);
		}

		function connect() {
			const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
			const ws = new WebSocket(proto + location.host + '/api/ws');
			ws.onmessage = e => render(JSON.parse(e.data));
			ws.onclose = () => {
				poll();
				setTimeout(connect, 5000);
			};
		}

		function startAll() { fetch('/api/start', { method: 'POST' }).then(poll); }
		function stopAll() { fetch('/api/stop', { method: 'POST' }).then(poll); }

		connect();
		poll();
	</script>
</body>
</html>
`
